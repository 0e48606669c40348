// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

// binLevelShifts are the five UCSC binning-scheme shift widths, smallest
// (finest) bin first, matching the standard BAM/tabix hierarchy.
var binLevelShifts = [5]uint{14, 17, 20, 23, 26}

// ReferenceBin returns the UCSC bin number for the half-open interval
// [beg, end) on a reference sequence: the smallest of the five shift levels
// at which beg and end fall in the same bucket, or bin 0 if they only agree
// at the top level. Unlike htslib's reg2bin, end is used as given rather
// than decremented to an inclusive last position; the two agree except when
// end lands exactly on a bucket boundary.
func ReferenceBin(beg, end int) uint16 {
	for _, k := range binLevelShifts {
		if beg>>k == end>>k {
			return uint16((((1 << (29 - k)) - 1) / 7) + (beg >> k))
		}
	}
	return 0
}
