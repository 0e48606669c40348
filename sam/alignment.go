// Copyright ©2012-2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

// SequenceData is an alignment item's base-call field: either absent, a
// literal base string, or a marker that the bases are identical to the
// reference at this position but were not stored.
type SequenceData interface {
	isSequenceData()
}

// NoSequence is the SequenceData of an item with no base calls ('*' on
// the wire).
type NoSequence struct{}

func (NoSequence) isSequenceData() {}

// Sequence is a literal base-call string.
type Sequence string

func (Sequence) isSequenceData() {}

// ReferenceEqualSequence marks an item whose bases equal the reference at
// this position without storing them; built programmatically, never
// produced by the BAM/SAM decoders. Downgrading such an item fails with
// cannot_get_sequence, since there is no sequence to emit.
type ReferenceEqualSequence struct{}

func (ReferenceEqualSequence) isSequenceData() {}

// Alignment is the rich SAM view of one alignment record: raw BAM fields
// refined into optional 1-based positions, a typed flag set, a resolved
// reference, and decoded CIGAR/aux content.
type Alignment struct {
	QueryTemplateName     string
	Flags                 Flags
	ReferenceSequence     SequenceRef
	Position              *int // 1-based; nil if unplaced.
	MappingQuality        *uint8
	CigarOperations       Cigar
	MateReferenceSequence SequenceRef
	MatePosition          *int
	TemplateLength        int
	SequenceContent       SequenceData
	Quality               []byte
	OptionalContent       OptionalFields
}
