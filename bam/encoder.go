// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"

	"github.com/biogo/htsflow/transform"
)

// Encoder is the inverse of Parser (C3's encode direction): it turns
// RawItems back into the BAM byte layout, one item at a time. The header
// text is buffered until the matching RefInfo item arrives, since the
// wire header block carries n_ref and the two raw items arrive
// separately.
type Encoder struct {
	out        [][]byte
	headerText *string
}

// NewEncoder returns an Encoder expecting a Header item first.
func NewEncoder() *Encoder { return &Encoder{} }

var _ transform.Stage[RawItem, []byte] = (*Encoder)(nil)

func (e *Encoder) Feed(in RawItem) {
	switch {
	case in.Header != nil:
		e.headerText = in.Header
	case in.RefInfo != nil:
		text := ""
		if e.headerText != nil {
			text = *e.headerText
		}
		e.out = append(e.out, encodeHeaderBlock(text, int32(len(in.RefInfo))))
		e.out = append(e.out, encodeRefInfoBlock(in.RefInfo))
		e.headerText = nil
	case in.Alignment != nil:
		e.out = append(e.out, encodeAlignmentBlock(in.Alignment))
	}
}

func (e *Encoder) Next(stopped bool) transform.Result[[]byte] {
	if len(e.out) == 0 {
		if stopped {
			return transform.Result[[]byte]{Status: transform.EndOfStream}
		}
		return transform.Result[[]byte]{Status: transform.NotReady}
	}
	item := e.out[0]
	e.out = e.out[1:]
	return transform.Result[[]byte]{Status: transform.Ready, Item: item}
}

// encodeHeaderBlock renders the BAM magic + header-text + n_ref preamble.
func encodeHeaderBlock(text string, nRef int32) []byte {
	var b bytes.Buffer
	b.Write(bamMagic[:])
	writeInt32(&b, int32(len(text)))
	b.WriteString(text)
	writeInt32(&b, nRef)
	return b.Bytes()
}

func encodeRefInfoBlock(refs []RawReference) []byte {
	var b bytes.Buffer
	for _, r := range refs {
		writeInt32(&b, int32(len(r.Name)+1))
		b.WriteString(r.Name)
		b.WriteByte(0)
		writeInt32(&b, r.Length)
	}
	return b.Bytes()
}

func encodeAlignmentBlock(r *RawAlignment) []byte {
	var body bytes.Buffer
	writeInt32(&body, r.RefID)
	writeInt32(&body, r.Pos)
	body.WriteByte(byte(len(r.QName) + 1))
	body.WriteByte(r.MapQ)
	writeUint16(&body, r.Bin)
	writeUint16(&body, uint16(r.NCigarOp))
	writeUint16(&body, r.Flag)
	writeInt32(&body, int32(r.LSeq))
	writeInt32(&body, r.NextRefID)
	writeInt32(&body, r.NextPos)
	writeInt32(&body, r.TLen)
	body.WriteString(r.QName)
	body.WriteByte(0)
	body.Write(r.Cigar)
	body.Write(packSeq(r.Seq))
	body.Write(r.Qual)
	body.Write(r.Optional)

	var b bytes.Buffer
	writeInt32(&b, int32(body.Len()))
	b.Write(body.Bytes())
	return b.Bytes()
}

var seqAlphabetLookup [256]byte

func init() {
	for i := 0; i < len(seqAlphabet); i++ {
		seqAlphabetLookup[seqAlphabet[i]] = byte(i)
	}
}

// packSeq is the inverse of unpackSeq: two bases per byte, high nibble
// first; the low nibble of the final byte is zero when len(seq) is odd.
func packSeq(seq string) []byte {
	out := make([]byte, (len(seq)+1)/2)
	for i := 0; i < len(seq); i++ {
		nib := seqAlphabetLookup[seq[i]]
		if i%2 == 0 {
			out[i/2] |= nib << 4
		} else {
			out[i/2] |= nib
		}
	}
	return out
}

func writeInt32(b *bytes.Buffer, v int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	b.Write(buf[:])
}

func writeUint16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}
