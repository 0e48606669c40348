// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transform provides a small generic "stoppable transform" kernel:
// a cooperative, non-blocking stage that accepts input by value and emits
// output items, errors, a not-ready signal, or end-of-stream, one at a time,
// when polled by a host driver.
//
// A Stage never performs ambient I/O and never blocks; any transform that
// must bridge to a blocking API (for example a third-party decompressor)
// confines that blocking work to a private background goroutine and
// exposes only the Feed/Next contract below.
package transform

import "fmt"

// Status is the outcome of a single poll of a Stage.
type Status int

const (
	// Ready indicates the poll produced a result: Result.Item holds an
	// emitted value, or, when Result.Err is non-nil, the stage is
	// reporting an error.
	Ready Status = iota
	// NotReady indicates the stage needs more input before it can emit
	// another item; the caller should Feed more data and poll again.
	NotReady
	// EndOfStream indicates the stage has nothing further to emit for the
	// input fed so far. Whether it emits again if fed more input depends
	// on the stage; a stage that has reported an error yields EndOfStream
	// from then on.
	EndOfStream
)

// String returns a human readable name for s.
func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case NotReady:
		return "not-ready"
	case EndOfStream:
		return "end-of-stream"
	default:
		return fmt.Sprintf("transform.Status(%d)", int(s))
	}
}

// Result is the outcome of a call to Stage.Next.
type Result[O any] struct {
	Status Status
	Item   O
	Err    error
}

// ready returns a Result reporting a successfully emitted item.
func ready[O any](item O) Result[O] { return Result[O]{Status: Ready, Item: item} }

// failed returns a Result reporting a decoding error. Per the policy in the
// error handling design, a stage that observes a decoding error emits it
// once and thereafter yields EndOfStream; Stage implementations are
// responsible for remembering that they have already reported their error.
func failed[O any](err error) Result[O] { return Result[O]{Status: Ready, Err: err} }

// notReady and endOfStream are not parameterized by a meaningful Item value,
// but O must still be named to satisfy the generic Result type at call
// sites; callers should not inspect Item unless Status is Ready.
func notReady[O any]() Result[O]    { return Result[O]{Status: NotReady} }
func endOfStream[O any]() Result[O] { return Result[O]{Status: EndOfStream} }

// Stage is a pollable transform from a stream of I to a stream of O.
// Feed appends one unit of input (a byte chunk for byte-consuming stages
// such as the gzip inflater and the raw BAM parser, or a single upstream
// item for item-consuming stages such as the SAM expander). Next attempts
// to produce the next output item without consuming further input; stopped
// is true once the producer upstream of Feed has reached its own
// end-of-stream.
type Stage[I, O any] interface {
	Feed(in I)
	Next(stopped bool) Result[O]
}

// sidedError tags an error with which side of a Chain composition produced
// it, mirroring the distilled design's left(E1)/right(E2) error wrapping.
type sidedError struct {
	side string
	err  error
}

func (e *sidedError) Error() string { return fmt.Sprintf("%s: %v", e.side, e.err) }
func (e *sidedError) Unwrap() error { return e.err }

// Left wraps err as having originated in the left (upstream) half of a
// Chain composition.
func Left(err error) error {
	if err == nil {
		return nil
	}
	return &sidedError{side: "left", err: err}
}

// Right wraps err as having originated in the right (downstream) half of a
// Chain composition.
func Right(err error) error {
	if err == nil {
		return nil
	}
	return &sidedError{side: "right", err: err}
}

// chain composes two stages so that the right stage's input stream is the
// left stage's output stream.
type chain[A, B, C any] struct {
	left  Stage[A, B]
	right Stage[B, C]

	leftDone bool
}

// Chain composes left and right into a single Stage from A to C. Feeding the
// returned stage feeds left; polling it drains left into right as needed to
// produce a C, wrapping any error from left with Left and any error from
// right with Right.
func Chain[A, B, C any](left Stage[A, B], right Stage[B, C]) Stage[A, C] {
	return &chain[A, B, C]{left: left, right: right}
}

func (c *chain[A, B, C]) Feed(in A) { c.left.Feed(in) }

func (c *chain[A, B, C]) Next(stopped bool) Result[C] {
	for {
		rr := c.right.Next(stopped && c.leftDone)
		switch rr.Status {
		case Ready:
			if rr.Err != nil {
				rr.Err = Right(rr.Err)
			}
			return rr
		case EndOfStream:
			return rr
		}

		if c.leftDone {
			// right is NotReady but will never see more input; this only
			// happens if right disagrees with leftDone, so surface it as
			// NotReady rather than spinning.
			return notReady[C]()
		}

		rl := c.left.Next(stopped)
		switch rl.Status {
		case Ready:
			if rl.Err != nil {
				return failed[C](Left(rl.Err))
			}
			c.right.Feed(rl.Item)
		case NotReady:
			return notReady[C]()
		case EndOfStream:
			c.leftDone = true
		}
	}
}

// Drain polls s until it returns NotReady or EndOfStream, appending every
// Ready item (and returning the first error encountered) to the result. It
// is a convenience for tests and simple drivers; production drivers are
// expected to interleave Feed calls with their own Drain-like loop.
func Drain[I, O any](s Stage[I, O], stopped bool) (items []O, err error) {
	for {
		r := s.Next(stopped)
		switch r.Status {
		case Ready:
			if r.Err != nil {
				return items, r.Err
			}
			items = append(items, r.Item)
		case NotReady, EndOfStream:
			return items, nil
		}
	}
}
