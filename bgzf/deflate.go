// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"

	"github.com/biogo/htsflow/transform"
)

const uncompressedBlockSize = 0xff00

// bgzfExtra is the BC-subfield BGZF places in every gzip member's Extra
// header field: subfield id "BC", subfield length 2, and a placeholder for
// the two-byte total-block-size-minus-one value patched in after
// compression (§6; the layout this repo's blocks carry is the same one
// grailbio-bio's bgzf.Writer constructs).
var bgzfExtra = [6]byte{'B', 'C', 2, 0, 0, 0}

// bgzfExtraPrefix identifies the subfield inside the rendered gzip header
// so its last two bytes can be patched with the real block size.
var bgzfExtraPrefix = [4]byte{'B', 'C', 2, 0}

// bgzfTerminator is the standard 28-byte empty BGZF end-of-file block every
// well-formed BGZF stream ends with.
var bgzfTerminator = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
	0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// DeflateError wraps a gzip encoding failure.
type DeflateError struct{ Err error }

func (e *DeflateError) Error() string { return fmt.Sprintf("bgzf: deflate: %v", e.Err) }
func (e *DeflateError) Unwrap() error { return e.Err }

// Deflater is C2's encode direction: a transform.Stage[[]byte, []byte] that
// buffers Feed input into uncompressedBlockSize-sized chunks and emits each
// as an independent BGZF block (a gzip member carrying the BC extra
// subfield), followed by the standard EOF terminator block once the
// upstream producer stops. It is the inverse of Inflater, and is what
// bam.Encoder's raw BAM bytes are fed through to produce a real BGZF-
// compressed BAM stream.
type Deflater struct {
	level      int
	in         []byte
	out        [][]byte
	failed     bool
	terminated bool
}

// NewDeflater returns a Deflater compressing at level (gzip.DefaultCompression
// if level is 0).
func NewDeflater(level int) *Deflater {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return &Deflater{level: level}
}

var _ transform.Stage[[]byte, []byte] = (*Deflater)(nil)

func (z *Deflater) Feed(in []byte) { z.in = append(z.in, in...) }

func (z *Deflater) Next(stopped bool) transform.Result[[]byte] {
	if z.failed {
		return transform.Result[[]byte]{Status: transform.EndOfStream}
	}
	for len(z.in) >= uncompressedBlockSize {
		block := z.in[:uncompressedBlockSize]
		z.in = z.in[uncompressedBlockSize:]
		b, err := z.compressBlock(block)
		if err != nil {
			return z.fail(err)
		}
		z.out = append(z.out, b)
	}
	if len(z.out) > 0 {
		item := z.out[0]
		z.out = z.out[1:]
		return transform.Result[[]byte]{Status: transform.Ready, Item: item}
	}
	if !stopped {
		return transform.Result[[]byte]{Status: transform.NotReady}
	}
	if len(z.in) > 0 {
		block := z.in
		z.in = nil
		b, err := z.compressBlock(block)
		if err != nil {
			return z.fail(err)
		}
		return transform.Result[[]byte]{Status: transform.Ready, Item: b}
	}
	if !z.terminated {
		z.terminated = true
		return transform.Result[[]byte]{Status: transform.Ready, Item: append([]byte(nil), bgzfTerminator...)}
	}
	return transform.Result[[]byte]{Status: transform.EndOfStream}
}

func (z *Deflater) fail(err error) transform.Result[[]byte] {
	z.failed = true
	return transform.Result[[]byte]{Status: transform.Ready, Err: &DeflateError{Err: err}}
}

// compressBlock renders uncompressed as a single BGZF block: a gzip member
// whose Extra field carries the BC subfield, with the subfield's
// block-size-minus-one value patched in once the final compressed length is
// known.
func (z *Deflater) compressBlock(uncompressed []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, z.level)
	if err != nil {
		return nil, err
	}
	gz.Header = gzip.Header{OS: 0xff, Extra: append([]byte(nil), bgzfExtra[:]...)}
	if _, err := gz.Write(uncompressed); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	b := buf.Bytes()
	off := bytes.Index(b, bgzfExtraPrefix[:])
	if off < 0 {
		return nil, fmt.Errorf("bgzf: could not find BC extra subfield in gzip header")
	}
	bsize := len(b) - 1
	if bsize >= 0x10000 {
		return nil, fmt.Errorf("bgzf: compressed block too large: %d bytes", bsize+1)
	}
	b[off+4] = byte(bsize)
	b[off+5] = byte(bsize >> 8)
	return b, nil
}
