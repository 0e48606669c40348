// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastq

import (
	"errors"
	"testing"

	"github.com/biogo/htsflow/transform"
)

func TestParserBasicRecord(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("@r1 extra\nACGT\n+\nIIII\n"))
	r := p.Next(true)
	if r.Status != transform.Ready || r.Err != nil {
		t.Fatalf("got %v, err %v", r.Status, r.Err)
	}
	want := Item{Name: "r1 extra", Sequence: "ACGT", Comment: "", Qualities: "IIII"}
	if r.Item != want {
		t.Fatalf("got %+v, want %+v", r.Item, want)
	}
	if r := p.Next(true); r.Status != transform.EndOfStream {
		t.Fatalf("got %v, want EndOfStream", r.Status)
	}
}

func TestParserMissingAt(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("r1\nACGT\n+\nIIII\n"))
	r := p.Next(true)
	if !errors.Is(r.Err, errMissingAt) {
		t.Fatalf("got %v, want missing_@", r.Err)
	}
}

func TestParserMissingPlus(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("@r1\nACGT\nX\nIIII\n"))
	r := p.Next(true)
	if !errors.Is(r.Err, errMissingPlus) {
		t.Fatalf("got %v, want missing_+", r.Err)
	}
}

func TestParserIncrementalFeed(t *testing.T) {
	p := NewParser()
	whole := "@r1\nACGT\n+c1\nIIII\n@r2\nGGCC\n+c2\nJJJJ\n"
	const recordLen = len("@r1\nACGT\n+c1\nIIII\n")
	var items []Item
	for i := 0; i < len(whole); i++ {
		p.Feed([]byte{whole[i]})
		r := p.Next(false)
		if r.Status != transform.Ready {
			continue
		}
		if (i+1)%recordLen != 0 {
			t.Fatalf("unexpected ready result mid-record at byte %d: %+v", i, r)
		}
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
		items = append(items, r.Item)
	}
	for {
		r := p.Next(true)
		if r.Status == transform.EndOfStream {
			break
		}
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
		items = append(items, r.Item)
	}
	if len(items) != 2 || items[0].Name != "r1" || items[1].Name != "r2" {
		t.Fatalf("got %+v", items)
	}
}

func TestEmitterRoundTrip(t *testing.T) {
	item := Item{Name: "r1", Sequence: "ACGT", Comment: "c", Qualities: "IIII"}
	e := NewEmitter()
	e.Feed(item)
	r := e.Next(true)
	if r.Status != transform.Ready {
		t.Fatalf("got %v", r.Status)
	}
	p := NewParser()
	p.Feed(r.Item)
	r2 := p.Next(true)
	if r2.Status != transform.Ready || r2.Item != item {
		t.Fatalf("round trip mismatch: got %+v", r2.Item)
	}
}

func TestSplitName(t *testing.T) {
	id, rest, ok := SplitName("SRR1/1 extra")
	if id != "SRR1/1" || rest != "extra" || !ok {
		t.Fatalf("got (%q, %q, %v)", id, rest, ok)
	}
	id, rest, ok = SplitName("SRR1")
	if id != "SRR1" || rest != "" || ok {
		t.Fatalf("got (%q, %q, %v)", id, rest, ok)
	}
}

func TestTileOfString(t *testing.T) {
	tile, err := TileOfString("2304")
	if err != nil {
		t.Fatal(err)
	}
	want := Tile{Surface: Bottom, Swath: 3, Number: 4}
	if tile != want {
		t.Fatalf("got %+v, want %+v", tile, want)
	}
	if got := TileToString(tile); got != "2304" {
		t.Fatalf("got %q, want %q", got, "2304")
	}
}

func TestParseIlluminaName(t *testing.T) {
	s := "EAS139:136:FC706VJ:2:2304:15343:197393 1:Y:18:ATCACG"
	n, err := ParseIlluminaName(s)
	if err != nil {
		t.Fatal(err)
	}
	if n.Instrument != "EAS139" || n.Lane != "2" || n.X != 15343 || n.Y != 197393 {
		t.Fatalf("got %+v", n)
	}
	if n.Tile != (Tile{Surface: Bottom, Swath: 3, Number: 4}) {
		t.Fatalf("got tile %+v", n.Tile)
	}
	if !n.IsFiltered || n.Index != "ATCACG" {
		t.Fatalf("got %+v", n)
	}
	if got := n.String(); got != s {
		t.Fatalf("got %q, want %q", got, s)
	}
}
