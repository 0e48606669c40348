// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/biogo/htsflow/transform"
)

var bamMagic = [4]byte{'B', 'A', 'M', 1}

// refInfoOverflow is the safety cap on the reference-info buffer (§5).
const refInfoOverflow = 50000

// parserState is which of the three raw-parser states is active.
type parserState int

const (
	stateHeader parserState = iota
	stateRefInfo
	stateAlignments
)

// WrongMagicNumberError reports a BAM stream not starting with "BAM\x01".
type WrongMagicNumberError [4]byte

func (e WrongMagicNumberError) Error() string {
	return fmt.Sprintf("bam: wrong magic number %x", [4]byte(e))
}

// WrongInt32Error reports a signed 32-bit field that could not be decoded.
type WrongInt32Error struct{ Bytes []byte }

func (e WrongInt32Error) Error() string {
	return fmt.Sprintf("bam: wrong int32 %x", e.Bytes)
}

// ReferenceInformationOverflowError reports a reference-info block that
// outgrew the 50000-byte safety cap before it could be fully buffered.
type ReferenceInformationOverflowError struct{ Len, BufLen int }

func (e ReferenceInformationOverflowError) Error() string {
	return fmt.Sprintf("bam: reference information overflow: need %d, have %d buffered", e.Len, e.BufLen)
}

var errRefInfoNameNotNullTerminated = fmt.Errorf("bam: reference information name not null terminated")
var errReadNameNotNullTerminated = fmt.Errorf("bam: read name not null terminated")

// Parser is the raw BAM record parser (C3): a transform.Stage consuming
// inflated BAM bytes and emitting RawItems, one per header block,
// reference-info block, or alignment record.
type Parser struct {
	state  parserState
	nRef   int
	refLeft int
	buf    []byte
	failed bool
}

// NewParser returns a Parser in its initial Header state.
func NewParser() *Parser { return &Parser{state: stateHeader} }

var _ transform.Stage[[]byte, RawItem] = (*Parser)(nil)

func (p *Parser) Feed(in []byte) { p.buf = append(p.buf, in...) }

func (p *Parser) Next(stopped bool) transform.Result[RawItem] {
	if p.failed {
		return endOfStreamRaw()
	}
	switch p.state {
	case stateHeader:
		return p.nextHeader(stopped)
	case stateRefInfo:
		return p.nextRefInfo(stopped)
	default:
		return p.nextAlignment(stopped)
	}
}

func endOfStreamRaw() transform.Result[RawItem] {
	return transform.Result[RawItem]{Status: transform.EndOfStream}
}

func (p *Parser) notReady(stopped bool) transform.Result[RawItem] {
	if stopped && len(p.buf) == 0 {
		return endOfStreamRaw()
	}
	return transform.Result[RawItem]{Status: transform.NotReady}
}

func (p *Parser) fail(err error) transform.Result[RawItem] {
	p.failed = true
	return transform.Result[RawItem]{Status: transform.Ready, Err: err}
}

func (p *Parser) nextHeader(stopped bool) transform.Result[RawItem] {
	if len(p.buf) < 12 {
		return p.notReady(stopped)
	}
	if !bytes.Equal(p.buf[:4], bamMagic[:]) {
		var got [4]byte
		copy(got[:], p.buf[:4])
		return p.fail(WrongMagicNumberError(got))
	}
	lText, err := readInt32(p.buf[4:8])
	if err != nil {
		return p.fail(err)
	}
	need := 8 + int(lText) + 4
	if len(p.buf) < need {
		return p.notReady(stopped)
	}
	text := string(p.buf[8 : 8+int(lText)])
	nRef, err := readInt32(p.buf[8+int(lText) : need])
	if err != nil {
		return p.fail(err)
	}
	p.buf = p.buf[need:]
	p.state = stateRefInfo
	p.nRef = int(nRef)
	return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{Header: &text}}
}

func (p *Parser) nextRefInfo(stopped bool) transform.Result[RawItem] {
	refs := make([]RawReference, 0, p.nRef)
	off := 0
	for i := 0; i < p.nRef; i++ {
		if off+4 > len(p.buf) {
			return p.refInfoNotReady(off, stopped)
		}
		lName, err := readInt32(p.buf[off : off+4])
		if err != nil {
			return p.fail(err)
		}
		need := off + 4 + int(lName) + 4
		if need > len(p.buf) {
			return p.refInfoNotReady(need, stopped)
		}
		nameBuf := p.buf[off+4 : off+4+int(lName)]
		if len(nameBuf) == 0 || nameBuf[len(nameBuf)-1] != 0 {
			return p.fail(errRefInfoNameNotNullTerminated)
		}
		lRef, err := readInt32(p.buf[off+4+int(lName) : need])
		if err != nil {
			return p.fail(err)
		}
		refs = append(refs, RawReference{Name: string(nameBuf[:len(nameBuf)-1]), Length: lRef})
		off = need
	}
	p.buf = p.buf[off:]
	p.state = stateAlignments
	return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{RefInfo: refs}}
}

func (p *Parser) refInfoNotReady(need int, stopped bool) transform.Result[RawItem] {
	if need > refInfoOverflow && len(p.buf) > refInfoOverflow {
		return p.fail(ReferenceInformationOverflowError{Len: need, BufLen: len(p.buf)})
	}
	return p.notReady(stopped)
}

func (p *Parser) nextAlignment(stopped bool) transform.Result[RawItem] {
	if len(p.buf) < 4 {
		return p.notReady(stopped)
	}
	blockSize, err := readInt32(p.buf[:4])
	if err != nil {
		return p.fail(err)
	}
	need := 4 + int(blockSize)
	if len(p.buf) < need {
		return p.notReady(stopped)
	}
	rec, err := decodeAlignmentBlock(p.buf[4:need])
	if err != nil {
		return p.fail(err)
	}
	p.buf = p.buf[need:]
	return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{Alignment: rec}}
}

func decodeAlignmentBlock(b []byte) (*RawAlignment, error) {
	if len(b) < 32 {
		return nil, WrongInt32Error{Bytes: b}
	}
	refID, err := readInt32(b[0:4])
	if err != nil {
		return nil, err
	}
	pos, err := readInt32(b[4:8])
	if err != nil {
		return nil, err
	}
	lReadName := int(b[8])
	mapQ := b[9]
	bin := binary.LittleEndian.Uint16(b[10:12])
	nCigarOp := int(binary.LittleEndian.Uint16(b[12:14]))
	flag := binary.LittleEndian.Uint16(b[14:16])
	lSeq, err := readInt32(b[16:20])
	if err != nil {
		return nil, err
	}
	nextRefID, err := readInt32(b[20:24])
	if err != nil {
		return nil, err
	}
	nextPos, err := readInt32(b[24:28])
	if err != nil {
		return nil, err
	}
	tLen, err := readInt32(b[28:32])
	if err != nil {
		return nil, err
	}

	off := 32
	if off+lReadName > len(b) {
		return nil, WrongInt32Error{Bytes: b}
	}
	nameBuf := b[off : off+lReadName]
	if len(nameBuf) == 0 || nameBuf[len(nameBuf)-1] != 0 {
		return nil, errReadNameNotNullTerminated
	}
	qname := string(nameBuf[:len(nameBuf)-1])
	off += lReadName

	cigarLen := 4 * nCigarOp
	if off+cigarLen > len(b) {
		return nil, WrongInt32Error{Bytes: b}
	}
	cigar := append([]byte(nil), b[off:off+cigarLen]...)
	off += cigarLen

	seqBytes := (int(lSeq) + 1) / 2
	if off+seqBytes > len(b) {
		return nil, WrongInt32Error{Bytes: b}
	}
	seq := unpackSeq(b[off:off+seqBytes], int(lSeq))
	off += seqBytes

	if off+int(lSeq) > len(b) {
		return nil, WrongInt32Error{Bytes: b}
	}
	qual := append([]byte(nil), b[off:off+int(lSeq)]...)
	off += int(lSeq)

	optional := append([]byte(nil), b[off:]...)

	return &RawAlignment{
		RefID: refID, Pos: pos, MapQ: mapQ, Bin: bin, Flag: flag,
		NextRefID: nextRefID, NextPos: nextPos, TLen: tLen,
		QName: qname, Cigar: cigar, Seq: seq, Qual: qual, Optional: optional,
		NCigarOp: nCigarOp, LSeq: int(lSeq),
	}, nil
}

// seqAlphabet is the 16-entry BAM packed-nucleotide alphabet, indexed by
// the nibble value.
const seqAlphabet = "=ACMGRSVTWYHKDBN"

func unpackSeq(b []byte, lSeq int) string {
	out := make([]byte, lSeq)
	for i := 0; i < lSeq; i++ {
		byteVal := b[i/2]
		var nib byte
		if i%2 == 0 {
			nib = byteVal >> 4
		} else {
			nib = byteVal & 0xf
		}
		out[i] = seqAlphabet[nib]
	}
	return string(out)
}

func readInt32(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, WrongInt32Error{Bytes: b}
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}
