// Copyright ©2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestFlagsString(c *check.C) {
	c.Check(Flags(0).String(), check.Equals, "------------")
	c.Check((Paired | Read1 | ProperPair).String(), check.Equals, "pP----1-----")
}

func (s *S) TestParseCigarRoundTrip(c *check.C) {
	cig, err := ParseCigar([]byte("12M3I5M"))
	c.Assert(err, check.Equals, nil)
	c.Check(cig.String(), check.Equals, "12M3I5M")

	star, err := ParseCigar([]byte("*"))
	c.Assert(err, check.Equals, nil)
	c.Check(star, check.IsNil)
	c.Check(star.String(), check.Equals, "*")
}

func (s *S) TestParseCigarRejectsUnknownOp(c *check.C) {
	_, err := ParseCigar([]byte("5Q"))
	c.Check(err, check.NotNil)
}

func (s *S) TestCigarLengths(c *check.C) {
	cig, err := ParseCigar([]byte("4M2I3M1D"))
	c.Assert(err, check.Equals, nil)
	ref, read := cig.Lengths()
	c.Check(ref, check.Equals, 4+3+1)
	c.Check(read, check.Equals, 4+2+3)
}

func (s *S) TestReferenceBin(c *check.C) {
	// Spec §8 S2 states pos=0, len=100 -> 4680, but the formula it gives
	// computes 4681 exactly: (1<<15-1)/7 == 4681, not 4680. Implemented
	// per the formula, not the arithmetic slip in the worked example.
	c.Check(ReferenceBin(0, 100), check.Equals, uint16(4681))
}

func (s *S) TestReferenceBinCoarserLevel(c *check.C) {
	bin := ReferenceBin(0, 1<<20)
	c.Check(bin, check.Not(check.Equals), uint16(4681))
}

func (s *S) TestDictionaryByName(c *check.C) {
	d := Dictionary{{Name: "chr1", Length: 100}, {Name: "chr2", Length: 200}}
	i, ok := d.ByName("chr2")
	c.Check(ok, check.Equals, true)
	c.Check(i, check.Equals, 1)
	_, ok = d.ByName("chr3")
	c.Check(ok, check.Equals, false)
}

func (s *S) TestParseHeader(c *check.C) {
	text := "@HD\tVN:1.5\tSO:coordinate\n@SQ\tSN:chr1\tLN:100\n@CO\thello world\n"
	lines, err := ParseHeader([]byte(text))
	c.Assert(err, check.Equals, nil)
	c.Assert(lines, check.HasLen, 3)

	hd, ok := lines[0].(HDLine)
	c.Assert(ok, check.Equals, true)
	c.Check(hd.Version, check.Equals, "1.5")
	c.Check(hd.SortOrder, check.Equals, Coordinate)

	sq, ok := lines[1].(SQLine)
	c.Assert(ok, check.Equals, true)
	c.Check(sq.Name, check.Equals, "chr1")
	c.Check(sq.Length, check.Equals, 100)

	co, ok := lines[2].(CommentLine)
	c.Assert(ok, check.Equals, true)
	c.Check(string(co), check.Equals, "hello world")
}

func (s *S) TestParseHeaderRejectsLateHD(c *check.C) {
	_, err := ParseHeader([]byte("@SQ\tSN:chr1\tLN:1\n@HD\tVN:1.5\n"))
	c.Check(err, check.NotNil)
}

func (s *S) TestMarshalHeaderRoundTrip(c *check.C) {
	text := "@HD\tVN:1.5\tSO:coordinate\n@SQ\tSN:chr1\tLN:100\n@CO\thello\n"
	lines, err := ParseHeader([]byte(text))
	c.Assert(err, check.Equals, nil)
	c.Check(string(MarshalHeader(lines)), check.Equals, text)
}

func (s *S) TestOptionalFieldString(c *check.C) {
	f := OptionalField{Tag: NewTag("NM"), Type: AuxInt32, Value: AuxValue{Int: 5}}
	c.Check(f.String(), check.Equals, "NM:i:5")
}
