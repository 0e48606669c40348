// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastq

import (
	"fmt"
	"strconv"
	"strings"
)

// Surface is the top/bottom flow-cell surface digit of a Casava tile
// number.
type Surface int

const (
	Top    Surface = 1
	Bottom Surface = 2
)

func (s Surface) String() string {
	if s == Bottom {
		return "bottom"
	}
	return "top"
}

// Tile is a decoded Illumina tile number: a 4-digit code "SWTT" where S
// is the surface, W the swath and TT the two-digit tile number.
type Tile struct {
	Surface Surface
	Swath   int
	Number  int
}

// TileOfString decodes a 4-digit Illumina tile code, e.g. "2304" →
// {Surface: Bottom, Swath: 3, Number: 4}.
func TileOfString(s string) (Tile, error) {
	if len(s) != 4 {
		return Tile{}, fmt.Errorf("fastq: malformed tile number %q", s)
	}
	if s[0] < '1' || s[0] > '2' {
		return Tile{}, fmt.Errorf("fastq: malformed tile surface %q", s)
	}
	if s[1] < '1' || s[1] > '3' {
		return Tile{}, fmt.Errorf("fastq: malformed tile swath %q", s)
	}
	n, err := strconv.Atoi(s[2:4])
	if err != nil {
		return Tile{}, fmt.Errorf("fastq: malformed tile number %q: %w", s, err)
	}
	return Tile{Surface: Surface(s[0] - '0'), Swath: int(s[1] - '0'), Number: n}, nil
}

// TileToString is the inverse of TileOfString, preserving the 4-digit
// zero-padded formatting.
func TileToString(t Tile) string {
	return fmt.Sprintf("%d%d%02d", int(t.Surface), t.Swath, t.Number)
}

// IlluminaName is a decoded Casava ≥1.8 read name.
type IlluminaName struct {
	Instrument    string
	RunNumber     string
	FlowcellID    string
	Lane          string
	Tile          Tile
	X, Y          int
	Read          string
	IsFiltered    bool
	ControlNumber string
	Index         string
}

// ParseIlluminaName parses the 11 colon/space-separated fields of a
// Casava ≥1.8 read name: "instrument:run:flowcell:lane:tile:x:y
// read:filtered:control:index".
func ParseIlluminaName(s string) (IlluminaName, error) {
	var n IlluminaName
	sp := strings.IndexByte(s, ' ')
	if sp < 0 {
		return n, fmt.Errorf("fastq: illumina name has no space-separated read field: %q", s)
	}
	head, tail := s[:sp], s[sp+1:]

	hf := strings.Split(head, ":")
	if len(hf) != 7 {
		return n, fmt.Errorf("fastq: illumina name expects 7 colon fields before the space, got %d", len(hf))
	}
	tf := strings.Split(tail, ":")
	if len(tf) != 4 {
		return n, fmt.Errorf("fastq: illumina name expects 4 colon fields after the space, got %d", len(tf))
	}

	tile, err := TileOfString(hf[4])
	if err != nil {
		return n, err
	}
	x, err := strconv.Atoi(hf[5])
	if err != nil {
		return n, fmt.Errorf("fastq: bad x position %q: %w", hf[5], err)
	}
	y, err := strconv.Atoi(hf[6])
	if err != nil {
		return n, fmt.Errorf("fastq: bad y position %q: %w", hf[6], err)
	}

	n = IlluminaName{
		Instrument:    hf[0],
		RunNumber:     hf[1],
		FlowcellID:    hf[2],
		Lane:          hf[3],
		Tile:          tile,
		X:             x,
		Y:             y,
		Read:          tf[0],
		IsFiltered:    tf[1] == "Y",
		ControlNumber: tf[2],
		Index:         tf[3],
	}
	return n, nil
}

// String renders n in its original "head space tail" wire form.
func (n IlluminaName) String() string {
	filtered := "N"
	if n.IsFiltered {
		filtered = "Y"
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%d:%d %s:%s:%s:%s",
		n.Instrument, n.RunNumber, n.FlowcellID, n.Lane, TileToString(n.Tile), n.X, n.Y,
		n.Read, filtered, n.ControlNumber, n.Index)
}
