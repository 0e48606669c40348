// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "fmt"

// Reference is one entry of a reference dictionary: a contig name and its
// length, exactly the pair carried by a BAM reference-information block.
type Reference struct {
	Name   string
	Length int
}

// String returns the @SQ-style textual form of r.
func (r *Reference) String() string {
	if r == nil {
		return "*"
	}
	return fmt.Sprintf("@SQ\tSN:%s\tLN:%d", r.Name, r.Length)
}

// Dictionary is an ordered reference-sequence dictionary, indexed by the
// same integer BAM alignments use for ref_id/next_ref_id.
type Dictionary []*Reference

// ByName returns the index of the reference named name, and whether it was
// found. Lookup is a linear scan, matching the teacher's dictionary
// resolution strategy: dictionaries are small (one entry per contig) and
// built once per stream, so there is no benefit to a map until profiling
// says otherwise.
func (d Dictionary) ByName(name string) (int, bool) {
	for i, r := range d {
		if r.Name == name {
			return i, true
		}
	}
	return -1, false
}

// At returns the reference at index i, or nil if i is out of range.
func (d Dictionary) At(i int) *Reference {
	if i < 0 || i >= len(d) {
		return nil
	}
	return d[i]
}

// SequenceRef is the alignment item's reference-sequence field: either
// unmapped, referring to a contig only by name (not yet resolved against a
// dictionary), or resolved to a specific dictionary entry.
type SequenceRef interface {
	isSequenceRef()
}

// UnplacedRef is the SequenceRef of an alignment with no reference
// sequence (BAM ref_id == -1).
type UnplacedRef struct{}

func (UnplacedRef) isSequenceRef() {}

// NamedRef is a SequenceRef known only by contig name, not yet cross-linked
// against a Dictionary.
type NamedRef string

func (NamedRef) isSequenceRef() {}

// ResolvedRef is a SequenceRef cross-linked against a specific Dictionary
// entry.
type ResolvedRef struct {
	*Reference
}

func (ResolvedRef) isSequenceRef() {}

// RefName returns the contig name carried by ref, or "*" for UnplacedRef.
func RefName(ref SequenceRef) string {
	switch r := ref.(type) {
	case UnplacedRef, nil:
		return "*"
	case NamedRef:
		return string(r)
	case ResolvedRef:
		return r.Name
	default:
		return "*"
	}
}
