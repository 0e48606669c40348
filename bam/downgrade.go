// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/biogo/htsflow/sam"
	"github.com/biogo/htsflow/transform"
)

var errCannotGetSequence = fmt.Errorf("bam: cannot_get_sequence")

// Downgrader is C7's rich-to-raw direction: the inverse of Expander. It
// buffers header lines into text, stores the dictionary, and re-encodes
// each alignment's CIGAR, aux content and bin.
type Downgrader struct {
	in             []ExpandedItem
	pendingHdr     []sam.HeaderLine
	dict           sam.Dictionary
	refInfoPending bool
	failed         bool
}

// NewDowngrader returns an empty Downgrader.
func NewDowngrader() *Downgrader { return &Downgrader{} }

var _ transform.Stage[ExpandedItem, RawItem] = (*Downgrader)(nil)

func (d *Downgrader) Feed(in ExpandedItem) { d.in = append(d.in, in) }

func (d *Downgrader) Next(stopped bool) transform.Result[RawItem] {
	for {
		if d.failed {
			return endOfStreamRaw()
		}
		if len(d.in) == 0 {
			if stopped {
				return endOfStreamRaw()
			}
			return transform.Result[RawItem]{Status: transform.NotReady}
		}

		item := d.in[0]
		switch {
		case item.HeaderLine != nil:
			d.in = d.in[1:]
			d.pendingHdr = append(d.pendingHdr, item.HeaderLine)
			continue

		case item.Dictionary != nil:
			d.in = d.in[1:]
			text := string(sam.MarshalHeader(d.pendingHdr))
			d.pendingHdr = nil
			d.dict = item.Dictionary
			d.refInfoPending = true
			return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{Header: &text}}

		default: // item.Alignment != nil
			if d.refInfoPending {
				d.refInfoPending = false
				refs := make([]RawReference, len(d.dict))
				for i, r := range d.dict {
					refs[i] = RawReference{Name: r.Name, Length: int32(r.Length)}
				}
				return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{RefInfo: refs}}
			}
			d.in = d.in[1:]
			r, err := d.downgradeAlignment(item.Alignment)
			if err != nil {
				d.failed = true
				return transform.Result[RawItem]{Status: transform.Ready, Err: err}
			}
			return transform.Result[RawItem]{Status: transform.Ready, Item: RawItem{Alignment: r}}
		}
	}
}

func (d *Downgrader) downgradeAlignment(a *sam.Alignment) (*RawAlignment, error) {
	refID, err := downgradeRef(a.ReferenceSequence, d.dict)
	if err != nil {
		return nil, err
	}
	mateRefID, err := downgradeRef(a.MateReferenceSequence, d.dict)
	if err != nil {
		return nil, err
	}

	var seq string
	switch v := a.SequenceContent.(type) {
	case sam.Sequence:
		seq = string(v)
	case sam.NoSequence, nil:
		seq = ""
	case sam.ReferenceEqualSequence:
		return nil, errCannotGetSequence
	}

	pos := int32(-1)
	if a.Position != nil {
		pos = int32(*a.Position - 1)
	}
	nextPos := int32(-1)
	if a.MatePosition != nil {
		nextPos = int32(*a.MatePosition - 1)
	}
	mapq := uint8(255)
	if a.MappingQuality != nil {
		mapq = *a.MappingQuality
	}

	bin := uint16(0)
	if pos != -1 {
		bin = sam.ReferenceBin(int(pos), int(pos)+len(seq))
	}

	cigar := EncodeCigar(a.CigarOperations)
	aux := EncodeAux(a.OptionalContent)

	return &RawAlignment{
		RefID:     refID,
		Pos:       pos,
		MapQ:      mapq,
		Bin:       bin,
		Flag:      uint16(a.Flags),
		NextRefID: mateRefID,
		NextPos:   nextPos,
		TLen:      int32(a.TemplateLength),
		QName:     a.QueryTemplateName,
		Cigar:     cigar,
		Seq:       seq,
		Qual:      a.Quality,
		Optional:  aux,
		NCigarOp:  len(a.CigarOperations),
		LSeq:      len(seq),
	}, nil
}

func downgradeRef(ref sam.SequenceRef, dict sam.Dictionary) (int32, error) {
	switch r := ref.(type) {
	case nil, sam.UnplacedRef:
		return -1, nil
	case sam.ResolvedRef:
		i, ok := dict.ByName(r.Name)
		if !ok {
			return 0, fmt.Errorf("bam: reference_name_not_found: %s", r.Name)
		}
		return int32(i), nil
	case sam.NamedRef:
		i, ok := dict.ByName(string(r))
		if !ok {
			return 0, fmt.Errorf("bam: reference_name_not_found: %s", string(r))
		}
		return int32(i), nil
	default:
		return -1, nil
	}
}
