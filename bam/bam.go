// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bam decodes and encodes the BAM binary alignment format as a
// streaming transform.Stage: a raw record parser and its inverse encoder,
// a CIGAR and auxiliary-field wire codec, and an expander/downgrader that
// converts between raw wire records and the rich sam.Alignment model. It
// does not build or consume BAI indexes and has no random-access reader.
//
// http://samtools.github.io/hts-specs/SAMv1.pdf
package bam
