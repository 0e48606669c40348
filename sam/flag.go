// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

// Flags is an alignment's FLAG bitfield, the typed bitset form of the
// raw 16-bit BAM flag word.
type Flags uint16

const (
	Paired        Flags = 1 << iota // The read is paired in sequencing, no matter whether it is mapped in a pair.
	ProperPair                      // The read is mapped in a proper pair.
	Unmapped                        // The read itself is unmapped; conflictive with ProperPair.
	MateUnmapped                    // The mate is unmapped.
	Reverse                         // The read is mapped to the reverse strand.
	MateReverse                     // The mate is mapped to the reverse strand.
	Read1                           // This is read1.
	Read2                           // This is read2.
	Secondary                       // Not primary alignment.
	QCFail                          // QC failure.
	Duplicate                       // Optical or PCR duplicate.
	Supplementary                   // Supplementary alignment, indicates alignment is part of a chimeric alignment.
)

// flagLetters renders each Flags bit, high order to the right:
// p P u U r R 1 2 s f d S, for Paired through Supplementary.
const flagLetters = "pPuUrR12sfdS"

// unpairedMask is the set of bits that are only meaningful when Paired is
// set; samtools-compatible renderers blank them out otherwise.
const unpairedMask = ProperPair | MateUnmapped | MateReverse | Read1 | Read2

// String renders f the way `samtools flags` does: one character per bit,
// '-' where the bit is clear, blanking the pairing-dependent bits when
// Paired itself is clear.
func (f Flags) String() string {
	if f&Paired == 0 {
		f &^= unpairedMask
	}
	b := make([]byte, len(flagLetters))
	for i, c := range flagLetters {
		if f&(1<<uint(i)) != 0 {
			b[i] = byte(c)
		} else {
			b[i] = '-'
		}
	}
	return string(b)
}
