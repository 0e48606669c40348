// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/biogo/htsflow/sam"
	"github.com/biogo/htsflow/transform"
	"github.com/kortschak/utter"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// buildUnmappedRecord assembles one raw alignment block (without the
// leading block_size) for the S1 scenario: an unmapped read named qname
// with no CIGAR, sequence or quality.
func buildUnmappedRecord(t *testing.T, qname string) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write(u32le(uint32(int32(-1))))    // ref_id
	b.Write(u32le(uint32(int32(-1))))    // pos
	b.WriteByte(byte(len(qname) + 1))    // l_read_name
	b.WriteByte(255)                     // mapq
	b.Write(u16le(0))                    // bin
	b.Write(u16le(0))                    // n_cigar_op
	b.Write(u16le(4))                    // flag (Unmapped)
	b.Write(u32le(0))                    // l_seq
	b.Write(u32le(uint32(int32(-1))))    // next_ref_id
	b.Write(u32le(uint32(int32(-1))))    // next_pos
	b.Write(u32le(0))                    // tlen
	b.WriteString(qname)
	b.WriteByte(0)
	return b.Bytes()
}

func buildBAMStream(t *testing.T, headerText string, recs [][]byte) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write(bamMagic[:])
	b.Write(u32le(uint32(len(headerText))))
	b.WriteString(headerText)
	b.Write(u32le(0)) // n_ref
	for _, r := range recs {
		b.Write(u32le(uint32(len(r))))
		b.Write(r)
	}
	return b.Bytes()
}

func drainParser(t *testing.T, p *Parser) []RawItem {
	t.Helper()
	var items []RawItem
	for {
		r := p.Next(true)
		switch r.Status {
		case transform.Ready:
			if r.Err != nil {
				t.Fatalf("unexpected error: %v", r.Err)
			}
			items = append(items, r.Item)
		case transform.EndOfStream:
			return items
		default:
			t.Fatalf("unexpected status %v", r.Status)
		}
	}
}

func TestParserScenarioS1(t *testing.T) {
	rec := buildUnmappedRecord(t, "r1")
	stream := buildBAMStream(t, "", [][]byte{rec})

	p := NewParser()
	p.Feed(stream)
	items := drainParser(t, p)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Header == nil || *items[0].Header != "" {
		t.Fatalf("got header %v, want empty", items[0].Header)
	}
	if items[1].RefInfo == nil || len(items[1].RefInfo) != 0 {
		t.Fatalf("got refinfo %v, want empty slice", items[1].RefInfo)
	}
	a := items[2].Alignment
	if a == nil {
		t.Fatal("expected an alignment item")
	}
	if a.QName != "r1" || a.RefID != -1 || a.Pos != -1 || a.MapQ != 255 || a.LSeq != 0 {
		t.Fatalf("got %+v", a)
	}
}

func TestParserWrongMagicNumber(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("NOTABAM12345678"))
	r := p.Next(true)
	if r.Status != transform.Ready || r.Err == nil {
		t.Fatalf("got %v, %v, want an error", r.Status, r.Err)
	}
	var me WrongMagicNumberError
	if !errorsAsMagic(r.Err, &me) {
		t.Fatalf("got %v, want WrongMagicNumberError", r.Err)
	}
}

func errorsAsMagic(err error, target *WrongMagicNumberError) bool {
	if e, ok := err.(WrongMagicNumberError); ok {
		*target = e
		return true
	}
	return false
}

func TestParserIncrementalFeed(t *testing.T) {
	rec := buildUnmappedRecord(t, "r2")
	stream := buildBAMStream(t, "@HD\tVN:1.5\n", [][]byte{rec})

	p := NewParser()
	for i := 0; i < len(stream); i += 5 {
		end := i + 5
		if end > len(stream) {
			end = len(stream)
		}
		p.Feed(stream[i:end])
	}
	items := drainParser(t, p)
	if len(items) != 3 || items[2].Alignment.QName != "r2" {
		t.Fatalf("got %+v", items)
	}
}

func TestUnpackSeqOddLength(t *testing.T) {
	// l_seq=3, packed bytes 0x01, 0x20 -> "=AC": nibbles 0, 1, 2 are '=',
	// 'A', 'C'; the trailing low nibble is ignored.
	got := unpackSeq([]byte{0x01, 0x20}, 3)
	if got != "=AC" {
		t.Fatalf("got %q, want %q", got, "=AC")
	}
}

func TestPackSeqRoundTrip(t *testing.T) {
	seq := "=ACGT"
	packed := packSeq(seq)
	got := unpackSeq(packed, len(seq))
	if got != seq {
		t.Fatalf("got %q, want %q", got, seq)
	}
}

func TestCigarWireRoundTrip(t *testing.T) {
	co := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 12), sam.NewCigarOp(sam.CigarInsertion, 3)}
	enc := EncodeCigar(co)
	dec, err := DecodeCigar(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec.String() != co.String() {
		t.Fatalf("got %v, want %v", dec, co)
	}
}

func TestCigarWrongLength(t *testing.T) {
	_, err := DecodeCigar([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected wrong_cigar_length error")
	}
}

func TestAuxScenarioS4(t *testing.T) {
	fs := sam.OptionalFields{{Tag: sam.NewTag("NM"), Type: sam.AuxInt32, Value: sam.AuxValue{Int: 5}}}
	got := EncodeAux(fs)
	want := []byte{0x4e, 0x4d, 0x69, 0x05, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	dec, err := DecodeAux(got)
	if err != nil {
		t.Fatal(err)
	}
	if len(dec) != 1 || dec[0].Value.Int != 5 {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuxArrayRoundTrip(t *testing.T) {
	fs := sam.OptionalFields{{
		Tag: sam.NewTag("ZA"), Type: sam.AuxArray,
		Value: sam.AuxValue{SubType: sam.AuxInt32, Ints: []int64{1, 2, 3}},
	}}
	enc := EncodeAux(fs)
	dec, err := DecodeAux(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(dec) != 1 || len(dec[0].Value.Ints) != 3 || dec[0].Value.Ints[2] != 3 {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuxArraySizeCap(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("ZA")
	b.WriteByte(sam.AuxArray)
	b.WriteByte(sam.AuxInt8)
	b.Write(u32le(5000))
	_, err := DecodeAux(b.Bytes())
	if err == nil {
		t.Fatal("expected array_size error")
	}
}

func TestAuxHexRoundTrip(t *testing.T) {
	fs := sam.OptionalFields{{
		Tag: sam.NewTag("HX"), Type: sam.AuxHex, Value: sam.AuxValue{Text: "1a2b"},
	}}
	enc := EncodeAux(fs)
	dec, err := DecodeAux(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(dec) != 1 || dec[0].Value.Text != "1a2b" {
		t.Fatalf("got %+v, want Text \"1a2b\"", dec)
	}
}

func TestEncoderRoundTrip(t *testing.T) {
	rec := buildUnmappedRecord(t, "r1")
	stream := buildBAMStream(t, "@HD\tVN:1.5\n", [][]byte{rec})

	p := NewParser()
	p.Feed(stream)
	items := drainParser(t, p)

	enc := NewEncoder()
	for _, it := range items {
		enc.Feed(it)
	}
	var got []byte
	for {
		r := enc.Next(true)
		if r.Status == transform.EndOfStream {
			break
		}
		if r.Err != nil {
			t.Fatalf("encode error: %v", r.Err)
		}
		got = append(got, r.Item...)
	}
	if !bytes.Equal(got, stream) {
		t.Fatalf("round trip mismatch:\n got  % x\n want % x", got, stream)
	}
}

func TestExpandDowngradeRoundTrip(t *testing.T) {
	rec := buildUnmappedRecord(t, "r1")
	stream := buildBAMStream(t, "@HD\tVN:1.5\n", [][]byte{rec})

	p := NewParser()
	p.Feed(stream)
	items := drainParser(t, p)

	exp := NewExpander()
	for _, it := range items {
		exp.Feed(it)
	}
	var expanded []ExpandedItem
	for {
		r := exp.Next(true)
		if r.Status == transform.EndOfStream {
			break
		}
		if r.Err != nil {
			t.Fatalf("expand error: %v", r.Err)
		}
		expanded = append(expanded, r.Item)
	}
	if len(expanded) != 3 {
		t.Fatalf("got %d expanded items, want 3", len(expanded))
	}
	if expanded[0].HeaderLine == nil {
		t.Fatal("expected a header line first")
	}
	if expanded[1].Dictionary == nil {
		t.Fatal("expected the dictionary second")
	}
	a := expanded[2].Alignment
	utter.Config.BytesWidth = 8
	t.Log(utter.Sdump(a))
	if a == nil || a.QueryTemplateName != "r1" || a.Position != nil || a.MappingQuality != nil {
		t.Fatalf("got %+v", a)
	}

	dg := NewDowngrader()
	for _, it := range expanded {
		dg.Feed(it)
	}
	var raw []RawItem
	for {
		r := dg.Next(true)
		if r.Status == transform.EndOfStream {
			break
		}
		if r.Err != nil {
			t.Fatalf("downgrade error: %v", r.Err)
		}
		raw = append(raw, r.Item)
	}
	if len(raw) != 3 {
		t.Fatalf("got %d raw items, want 3", len(raw))
	}
	if raw[2].Alignment.QName != "r1" || raw[2].Alignment.RefID != -1 || raw[2].Alignment.MapQ != 255 {
		t.Fatalf("got %+v", raw[2].Alignment)
	}
}
