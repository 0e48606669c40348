// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transform

import (
	"errors"
	"testing"
)

// byteSplitter splits a byte stream into fixed-size chunks, used to
// exercise Chain without depending on any other package.
type byteSplitter struct {
	size    int
	buf     []byte
	failed  bool
	failure error
}

func (s *byteSplitter) Feed(in []byte) { s.buf = append(s.buf, in...) }

func (s *byteSplitter) Next(stopped bool) Result[[]byte] {
	if s.failed {
		return endOfStream[[]byte]()
	}
	if len(s.buf) >= s.size {
		item := append([]byte(nil), s.buf[:s.size]...)
		s.buf = s.buf[s.size:]
		return ready(item)
	}
	if stopped {
		if len(s.buf) == 0 {
			return endOfStream[[]byte]()
		}
		s.failed = true
		return failed[[]byte](errors.New("short trailing chunk"))
	}
	return notReady[[]byte]()
}

// counter counts items fed to it, emitting a running total per item.
type counter struct {
	n    int
	seen []int
}

func (c *counter) Feed(in []byte) {
	c.n++
	c.seen = append(c.seen, c.n)
}

func (c *counter) Next(stopped bool) Result[int] {
	if len(c.seen) == 0 {
		if stopped {
			return endOfStream[int]()
		}
		return notReady[int]()
	}
	n := c.seen[0]
	c.seen = c.seen[1:]
	return ready(n)
}

func TestChainDrainsFullyBeforeNotReady(t *testing.T) {
	left := &byteSplitter{size: 4}
	right := &counter{}
	c := Chain[[]byte, []byte, int](left, right)

	c.Feed([]byte("abcdefgh"))
	items, err := Drain[[]byte, int](c, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Fatalf("got %v, want [1 2]", items)
	}
}

func TestChainNotReadyOnShortInput(t *testing.T) {
	left := &byteSplitter{size: 4}
	right := &counter{}
	c := Chain[[]byte, []byte, int](left, right)

	c.Feed([]byte("abc"))
	items, err := Drain[[]byte, int](c, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("got %v, want no items before stop", items)
	}
}

func TestChainEndOfStreamOnCleanStop(t *testing.T) {
	left := &byteSplitter{size: 4}
	right := &counter{}
	c := Chain[[]byte, []byte, int](left, right)

	c.Feed([]byte("abcd"))
	items, err := Drain[[]byte, int](c, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0] != 1 {
		t.Fatalf("got %v, want [1]", items)
	}

	r := c.Next(true)
	if r.Status != EndOfStream {
		t.Fatalf("got status %v, want EndOfStream", r.Status)
	}
}

func TestChainWrapsLeftError(t *testing.T) {
	left := &byteSplitter{size: 4}
	right := &counter{}
	c := Chain[[]byte, []byte, int](left, right)

	c.Feed([]byte("abc"))
	_, err := Drain[[]byte, int](c, true)
	if err == nil {
		t.Fatal("expected an error on a short trailing chunk")
	}
	var se *sidedError
	if !errors.As(err, &se) || se.side != "left" {
		t.Fatalf("got %v, want a left-tagged error", err)
	}
}

func TestBufferPoolRoundTrip(t *testing.T) {
	b := GetBuffer(100)
	if len(b) != 100 {
		t.Fatalf("got length %d, want 100", len(b))
	}
	PutBuffer(b)
	b2 := GetBuffer(50)
	if len(b2) != 50 {
		t.Fatalf("got length %d, want 50", len(b2))
	}
}
