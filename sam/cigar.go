// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"
)

// Cigar is an ordered list of CIGAR operations.
type Cigar []CigarOp

// String returns the CIGAR string for c, or "*" if c is empty.
func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var b bytes.Buffer
	for _, co := range c {
		fmt.Fprint(&b, co)
	}
	return b.String()
}

// Lengths returns the number of reference and read bases described by c.
func (c Cigar) Lengths() (ref, read int) {
	for _, co := range c {
		con := co.Type().Consumes()
		ref += co.Len() * con.Reference
		read += co.Len() * con.Query
	}
	return ref, read
}

// CigarOp is a single CIGAR operation: an operation type packed into the
// low four bits and a run length in the remaining bits, matching the wire
// layout of a packed BAM CIGAR word.
type CigarOp uint32

// NewCigarOp returns a CIGAR operation of the given type and run length.
func NewCigarOp(t CigarOpType, n int) CigarOp {
	return CigarOp(t) | (CigarOp(n) << 4)
}

// Type returns the operation type of co.
func (co CigarOp) Type() CigarOpType { return CigarOpType(co & 0xf) }

// Len returns the run length of co.
func (co CigarOp) Len() int { return int(co >> 4) }

// String returns the textual form of co, e.g. "12M".
func (co CigarOp) String() string { return fmt.Sprintf("%d%s", co.Len(), co.Type().String()) }

// CigarOpType is one of the nine BAM CIGAR operation codes.
type CigarOpType byte

const (
	CigarMatch       CigarOpType = iota // M: alignment match (sequence match or mismatch).
	CigarInsertion                      // I: insertion to the reference.
	CigarDeletion                       // D: deletion from the reference.
	CigarSkipped                        // N: skipped region from the reference.
	CigarSoftClipped                    // S: soft clip, present in SEQ.
	CigarHardClipped                    // H: hard clip, absent from SEQ.
	CigarPadded                         // P: padding, silent deletion from padded reference.
	CigarEqual                          // =: sequence match.
	CigarMismatch                       // X: sequence mismatch.
	numCigarOps
)

var cigarOpNames = [numCigarOps]string{"M", "I", "D", "N", "S", "H", "P", "=", "X"}

// Consumes reports how many query and reference positions one unit of ct
// consumes.
func (ct CigarOpType) Consumes() Consume {
	if ct >= numCigarOps {
		return Consume{}
	}
	return consume[ct]
}

// String returns the single-letter textual form of ct, or "?" for an
// operation type outside the valid range.
func (ct CigarOpType) String() string {
	if ct >= numCigarOps {
		return "?"
	}
	return cigarOpNames[ct]
}

// Consume describes how a CIGAR operation advances the query and
// reference coordinates of an alignment.
type Consume struct {
	Query, Reference int
}

var consume = [numCigarOps]Consume{
	CigarMatch:       {Query: 1, Reference: 1},
	CigarInsertion:   {Query: 1, Reference: 0},
	CigarDeletion:    {Query: 0, Reference: 1},
	CigarSkipped:     {Query: 0, Reference: 1},
	CigarSoftClipped: {Query: 1, Reference: 0},
	CigarHardClipped: {Query: 0, Reference: 0},
	CigarPadded:      {Query: 0, Reference: 0},
	CigarEqual:       {Query: 1, Reference: 1},
	CigarMismatch:    {Query: 1, Reference: 1},
}

var cigarOpTypeLookup [256]CigarOpType

func init() {
	for i := range cigarOpTypeLookup {
		cigarOpTypeLookup[i] = numCigarOps
	}
	for op, c := range cigarOpNames {
		cigarOpTypeLookup[c[0]] = CigarOpType(op)
	}
}

// ParseCigar parses a textual CIGAR string, e.g. "12M3I5M", returning nil
// for "*".
func ParseCigar(b []byte) (Cigar, error) {
	if len(b) == 1 && b[0] == '*' {
		return nil, nil
	}
	var c Cigar
	for i := 0; i < len(b); {
		j := i
		for j < len(b) && '0' <= b[j] && b[j] <= '9' {
			j++
		}
		if j == i || j == len(b) {
			return nil, fmt.Errorf("sam: malformed cigar string %q at %d", b, i)
		}
		n, err := atoiDigits(b[i:j])
		if err != nil {
			return nil, fmt.Errorf("sam: invalid cigar operation count: %q at %d", b[i:j], i)
		}
		op := cigarOpTypeLookup[b[j]]
		if op >= numCigarOps {
			return nil, fmt.Errorf("sam: failed to parse cigar string %q: unknown operation %q", b, b[j])
		}
		c = append(c, NewCigarOp(op, n))
		i = j + 1
	}
	return c, nil
}

// atoiDigits parses an ASCII decimal run-length, rejecting values too large
// to be a valid CIGAR run length (the wire format's 28-bit length field).
func atoiDigits(b []byte) (int, error) {
	n := 0
	for _, v := range b {
		if v < '0' || v > '9' {
			return 0, fmt.Errorf("sam: non-digit %q", v)
		}
		n = n*10 + int(v-'0')
	}
	if n < 0 || n >= 1<<28 {
		return 0, fmt.Errorf("sam: cigar run length out of range: %d", n)
	}
	return n, nil
}
