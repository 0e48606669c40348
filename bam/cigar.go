// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"fmt"

	"github.com/biogo/htsflow/sam"
)

// WrongCigarLengthError reports a CIGAR blob whose length is not a
// multiple of 4.
type WrongCigarLengthError int

func (e WrongCigarLengthError) Error() string {
	return fmt.Sprintf("bam: cigar blob length %d is not a multiple of 4", int(e))
}

// WrongCigarError reports a packed CIGAR word with an out-of-range
// operation code.
type WrongCigarError uint32

func (e WrongCigarError) Error() string {
	return fmt.Sprintf("bam: invalid cigar operation in word %#x", uint32(e))
}

// DecodeCigar decodes a packed BAM CIGAR blob into operations. Each word
// is little-endian; the low 4 bits are the opcode, the high 28 bits the
// run length.
func DecodeCigar(b []byte) (sam.Cigar, error) {
	if len(b)%4 != 0 {
		return nil, WrongCigarLengthError(len(b))
	}
	c := make(sam.Cigar, len(b)/4)
	for i := range c {
		word := binary.LittleEndian.Uint32(b[i*4 : i*4+4])
		op := sam.CigarOpType(word & 0xf)
		if op >= sam.CigarMismatch+1 {
			return nil, WrongCigarError(word)
		}
		c[i] = sam.NewCigarOp(op, int(word>>4))
	}
	return c, nil
}

// EncodeCigar is the inverse of DecodeCigar.
func EncodeCigar(c sam.Cigar) []byte {
	b := make([]byte, len(c)*4)
	for i, op := range c {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], uint32(op))
	}
	return b
}
