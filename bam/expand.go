// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/biogo/htsflow/sam"
	"github.com/biogo/htsflow/transform"
)

const (
	minPos   = -1
	maxPos   = 536870910
	maxTLen  = 536870911
	maxQName = 255
)

// ExpandedItem is one item the Expander emits: exactly one of HeaderLine,
// Dictionary or Alignment is set.
type ExpandedItem struct {
	HeaderLine sam.HeaderLine
	Dictionary sam.Dictionary
	Alignment  *sam.Alignment
}

// Expander is C7's raw-to-rich direction: it raises RawItems into
// ExpandedItems, cross-linking alignments against the reference
// dictionary and recomputing optional positions and quality vectors.
type Expander struct {
	in          []RawItem
	pendingHdr  []sam.HeaderLine
	dict        sam.Dictionary
	dictPending bool
	dictEmitted bool
	failed      bool
}

// NewExpander returns an empty Expander.
func NewExpander() *Expander { return &Expander{} }

var _ transform.Stage[RawItem, ExpandedItem] = (*Expander)(nil)

func (e *Expander) Feed(in RawItem) { e.in = append(e.in, in) }

func (e *Expander) Next(stopped bool) transform.Result[ExpandedItem] {
	for {
		if e.failed {
			return transform.Result[ExpandedItem]{Status: transform.EndOfStream}
		}
		if len(e.pendingHdr) > 0 {
			l := e.pendingHdr[0]
			e.pendingHdr = e.pendingHdr[1:]
			return transform.Result[ExpandedItem]{Status: transform.Ready, Item: ExpandedItem{HeaderLine: l}}
		}
		if len(e.in) == 0 {
			if stopped {
				return transform.Result[ExpandedItem]{Status: transform.EndOfStream}
			}
			return transform.Result[ExpandedItem]{Status: transform.NotReady}
		}

		item := e.in[0]
		switch {
		case item.Header != nil:
			e.in = e.in[1:]
			lines, err := sam.ParseHeader([]byte(*item.Header))
			if err != nil {
				return e.fail(err)
			}
			if len(lines) == 0 {
				continue
			}
			e.pendingHdr = lines[1:]
			return transform.Result[ExpandedItem]{Status: transform.Ready, Item: ExpandedItem{HeaderLine: lines[0]}}

		case item.RefInfo != nil:
			e.in = e.in[1:]
			dict := make(sam.Dictionary, len(item.RefInfo))
			for i, r := range item.RefInfo {
				dict[i] = &sam.Reference{Name: r.Name, Length: int(r.Length)}
			}
			e.dict = dict
			e.dictPending = true
			continue

		default: // item.Alignment != nil
			if e.dictPending && !e.dictEmitted {
				e.dictPending = false
				e.dictEmitted = true
				return transform.Result[ExpandedItem]{Status: transform.Ready, Item: ExpandedItem{Dictionary: e.dict}}
			}
			e.in = e.in[1:]
			a, err := e.expandAlignment(item.Alignment)
			if err != nil {
				return e.fail(err)
			}
			return transform.Result[ExpandedItem]{Status: transform.Ready, Item: ExpandedItem{Alignment: a}}
		}
	}
}

func (e *Expander) fail(err error) transform.Result[ExpandedItem] {
	e.failed = true
	return transform.Result[ExpandedItem]{Status: transform.Ready, Err: err}
}

func (e *Expander) expandAlignment(r *RawAlignment) (*sam.Alignment, error) {
	if len(r.QName) < 1 || len(r.QName) > maxQName {
		return nil, fmt.Errorf("bam: wrong_qname: %q", r.QName)
	}
	if int(r.Pos) < minPos || int(r.Pos) > maxPos {
		return nil, fmt.Errorf("bam: wrong_pos: %d", r.Pos)
	}
	if int(r.NextPos) < minPos || int(r.NextPos) > maxPos {
		return nil, fmt.Errorf("bam: wrong_pnext: %d", r.NextPos)
	}
	if int(r.TLen) > maxTLen || int(r.TLen) < -maxTLen {
		return nil, fmt.Errorf("bam: wrong_tlen: %d", r.TLen)
	}

	ref, err := resolveRef(r.RefID, e.dict)
	if err != nil {
		return nil, err
	}
	mateRef, err := resolveRef(r.NextRefID, e.dict)
	if err != nil {
		return nil, err
	}

	cigar, err := DecodeCigar(r.Cigar)
	if err != nil {
		return nil, err
	}
	aux, err := DecodeAux(r.Optional)
	if err != nil {
		return nil, err
	}

	var pos, nextPos *int
	if r.Pos != -1 {
		v := int(r.Pos) + 1
		pos = &v
	}
	if r.NextPos != -1 {
		v := int(r.NextPos) + 1
		nextPos = &v
	}
	var mapq *uint8
	if r.MapQ != 255 {
		v := r.MapQ
		mapq = &v
	}

	// An empty raw sequence (l_seq == 0) decodes to an empty Sequence, not
	// NoSequence: BAM has no distinct "absent" wire encoding for SEQ.
	var seq sam.SequenceData = sam.Sequence(r.Seq)

	return &sam.Alignment{
		QueryTemplateName:     r.QName,
		Flags:                 sam.Flags(r.Flag),
		ReferenceSequence:     ref,
		Position:              pos,
		MappingQuality:        mapq,
		CigarOperations:       cigar,
		MateReferenceSequence: mateRef,
		MatePosition:          nextPos,
		TemplateLength:        int(r.TLen),
		SequenceContent:       seq,
		Quality:               r.Qual,
		OptionalContent:       aux,
	}, nil
}

func resolveRef(id int32, dict sam.Dictionary) (sam.SequenceRef, error) {
	if id == -1 {
		return sam.UnplacedRef{}, nil
	}
	if id < 0 || int(id) >= len(dict) {
		return nil, fmt.Errorf("bam: reference_sequence_not_found: %d", id)
	}
	return sam.ResolvedRef{Reference: dict[id]}, nil
}
