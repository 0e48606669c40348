// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgzf provides a streaming gzip inflater and a BGZF block
// deflater as transform.Stages. BGZF is a series of independent,
// back-to-back gzip members; klauspost/compress's gzip.Reader already
// treats such a stream as one continuous logical stream (Multistream
// defaults to true), so the Inflater is a plain gzip decoder with no
// BGZF-specific block handling. The Deflater writes BGZF blocks (BC extra
// subfield, EOF terminator block).
package bgzf

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/biogo/htsflow/transform"
)

const defaultBufSize = 32 * 1024

// UnzipError wraps a gzip decoding failure, the unzip(e) error kind of
// §7.
type UnzipError struct{ Err error }

func (e *UnzipError) Error() string { return fmt.Sprintf("bgzf: unzip: %v", e.Err) }
func (e *UnzipError) Unwrap() error { return e.Err }

// Inflater is the gzip stream inflater (C2): a transform.Stage[[]byte,
// []byte] bridging the blocking klauspost/compress/gzip.Reader API to the
// non-blocking Feed/Next contract via a background goroutine reading
// through a mutex/condvar byte queue, the same asynchronous handoff
// pattern used by grailbio's pam field writer.
type Inflater struct {
	bufSize int

	mu      sync.Mutex
	cond    *sync.Cond
	in      []byte
	out     []byte
	stopped bool
	done    bool
	err     error

	started bool
}

// NewInflater returns an Inflater that reads inflated output in chunks of
// at most bufSize bytes (defaultBufSize if bufSize <= 0).
func NewInflater(bufSize int) *Inflater {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	z := &Inflater{bufSize: bufSize}
	z.cond = sync.NewCond(&z.mu)
	return z
}

var _ transform.Stage[[]byte, []byte] = (*Inflater)(nil)

func (z *Inflater) Feed(in []byte) {
	if len(in) == 0 {
		return
	}
	z.mu.Lock()
	z.in = append(z.in, in...)
	z.cond.Broadcast()
	if !z.started {
		z.started = true
		go z.run()
	}
	z.mu.Unlock()
}

func (z *Inflater) Next(stopped bool) transform.Result[[]byte] {
	z.mu.Lock()
	defer z.mu.Unlock()
	if stopped && !z.stopped {
		z.stopped = true
		z.cond.Broadcast()
		if !z.started {
			// Nothing was ever fed; there is no stream to inflate.
			z.done = true
		}
	}
	if len(z.out) > 0 {
		item := z.out
		z.out = nil
		return transform.Result[[]byte]{Status: transform.Ready, Item: item}
	}
	if z.err != nil {
		err := z.err
		z.err = nil
		return transform.Result[[]byte]{Status: transform.Ready, Err: &UnzipError{Err: err}}
	}
	if z.done {
		return transform.Result[[]byte]{Status: transform.EndOfStream}
	}
	return transform.Result[[]byte]{Status: transform.NotReady}
}

// run is the background goroutine that performs blocking gzip reads
// against the Feed-fed byte queue, decoupling it from the non-blocking
// Next contract.
func (z *Inflater) run() {
	gz, err := gzip.NewReader(&feedReader{z: z})
	if err != nil {
		z.finish(nil, err)
		return
	}
	defer gz.Close()
	buf := transform.GetBuffer(z.bufSize)
	defer transform.PutBuffer(buf)
	for {
		n, err := gz.Read(buf)
		if n > 0 {
			z.mu.Lock()
			z.out = append(z.out, buf[:n]...)
			z.cond.Broadcast()
			z.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				z.finish(nil, nil)
			} else {
				z.finish(nil, err)
			}
			return
		}
	}
}

func (z *Inflater) finish(_ []byte, err error) {
	z.mu.Lock()
	z.done = true
	z.err = err
	z.cond.Broadcast()
	z.mu.Unlock()
}

// feedReader is the blocking io.Reader the background gzip.Reader reads
// from; it waits on the Inflater's condvar for Feed to supply more bytes,
// returning io.EOF once the caller has signalled stopped and the queue is
// drained.
type feedReader struct{ z *Inflater }

func (r *feedReader) Read(p []byte) (int, error) {
	z := r.z
	z.mu.Lock()
	defer z.mu.Unlock()
	for len(z.in) == 0 && !z.stopped {
		z.cond.Wait()
	}
	if len(z.in) > 0 {
		n := copy(p, z.in)
		z.in = z.in[n:]
		return n, nil
	}
	return 0, io.EOF
}
