// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

// RawReference is one entry of a raw reference-information block: a
// contig name and length, as read directly off the wire.
type RawReference struct {
	Name   string
	Length int32
}

// RawAlignment is one BAM alignment record before expansion into the
// rich sam.Alignment model: positions and indices are still raw wire
// values, CIGAR is still a packed byte block, and the optional-field
// area is still an undecoded blob.
type RawAlignment struct {
	RefID      int32
	Pos        int32
	MapQ       uint8
	Bin        uint16
	Flag       uint16
	NextRefID  int32
	NextPos    int32
	TLen       int32
	QName      string
	Cigar      []byte // opaque, length 4*n_cigar_op.
	Seq        string // unpacked nucleotide string, length l_seq.
	Qual       []byte // Phred scores, length l_seq, 255 == missing.
	Optional   []byte // opaque aux-field blob.
	NCigarOp   int
	LSeq       int
}

// RawItem is the value C3 emits: exactly one of Header, RefInfo or
// Alignment is set, mirroring the parser's three states.
type RawItem struct {
	Header     *string
	RefInfo    []RawReference
	Alignment  *RawAlignment
}
