// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"
)

// SortOrder is the HD-line SO tag.
type SortOrder int

const (
	UnknownOrder SortOrder = iota
	Unsorted
	QueryName
	Coordinate
)

var (
	sortOrderName = [...]string{
		UnknownOrder: "unknown",
		Unsorted:     "unsorted",
		QueryName:    "queryname",
		Coordinate:   "coordinate",
	}
	sortOrderFromName = map[string]SortOrder{
		"unknown":    UnknownOrder,
		"unsorted":   Unsorted,
		"queryname":  QueryName,
		"coordinate": Coordinate,
	}
)

func (so SortOrder) String() string {
	if so < UnknownOrder || so > Coordinate {
		return sortOrderName[UnknownOrder]
	}
	return sortOrderName[so]
}

// Field is one tag:value pair of a tag-group header line.
type Field struct {
	Tag   string
	Value string
}

// HeaderLine is one parsed line of a SAM header, in file order.
//
// HDLine, SQLine, TagLine and CommentLine are the concrete cases; callers
// type-switch on the concrete type the way they do for SequenceRef.
type HeaderLine interface {
	isHeaderLine()
}

// HDLine is the header's single leading "@HD" line.
type HDLine struct {
	Version   string
	SortOrder SortOrder
	Extra     []Field
}

func (HDLine) isHeaderLine() {}

// SQLine is one "@SQ" reference-dictionary line.
type SQLine struct {
	Name   string
	Length int
	Extra  []Field
}

func (SQLine) isHeaderLine() {}

// TagLine is any other tag-group line ("@RG", "@PG", ...), preserved
// verbatim as an ordered field list.
type TagLine struct {
	Tag    string
	Fields []Field
}

func (TagLine) isHeaderLine() {}

// CommentLine is an "@CO" line; its string value is everything after the
// tab that follows "@CO".
type CommentLine string

func (CommentLine) isHeaderLine() {}

// ParseHeader decodes SAM header text into an ordered sequence of lines,
// per §4.6: split on '\n', skip empty lines, parse each in order. The
// first non-comment line, if any, must be "@HD".
func ParseHeader(text []byte) ([]HeaderLine, error) {
	var lines []HeaderLine
	seenNonComment := false
	for i, raw := range bytes.Split(text, []byte("\n")) {
		if len(raw) == 0 {
			continue
		}
		if raw[0] != '@' {
			return nil, fmt.Errorf("sam: header line %d does not start with '@'", i)
		}
		fields := bytes.Split(raw, []byte("\t"))
		tag := string(fields[0][1:])

		if tag == "CO" {
			lines = append(lines, CommentLine(bytes.Join(fields[1:], []byte("\t"))))
			continue
		}

		if !seenNonComment && tag != "HD" {
			return nil, headerLineNotFirstError(i)
		}

		switch tag {
		case "HD":
			if seenNonComment {
				return nil, fmt.Errorf("sam: @HD line at %d is not first", i)
			}
			hd := HDLine{}
			for _, f := range fields[1:] {
				k, v, err := splitField(f)
				if err != nil {
					return nil, err
				}
				switch k {
				case "VN":
					hd.Version = v
				case "SO":
					so, ok := sortOrderFromName[v]
					if !ok {
						so = UnknownOrder
					}
					hd.SortOrder = so
				default:
					hd.Extra = append(hd.Extra, Field{k, v})
				}
			}
			lines = append(lines, hd)
		case "SQ":
			sq := SQLine{}
			for _, f := range fields[1:] {
				k, v, err := splitField(f)
				if err != nil {
					return nil, err
				}
				switch k {
				case "SN":
					sq.Name = v
				case "LN":
					n, err := atoiDigits([]byte(v))
					if err != nil {
						return nil, fmt.Errorf("sam: @SQ line %d: bad LN: %w", i, err)
					}
					sq.Length = n
				default:
					sq.Extra = append(sq.Extra, Field{k, v})
				}
			}
			lines = append(lines, sq)
		default:
			tl := TagLine{Tag: tag}
			for _, f := range fields[1:] {
				k, v, err := splitField(f)
				if err != nil {
					return nil, err
				}
				tl.Fields = append(tl.Fields, Field{k, v})
			}
			lines = append(lines, tl)
		}
		seenNonComment = true
	}
	return lines, nil
}

func splitField(b []byte) (tag, value string, err error) {
	i := bytes.IndexByte(b, ':')
	if i < 0 {
		return "", "", fmt.Errorf("sam: malformed header field %q", b)
	}
	return string(b[:i]), string(b[i+1:]), nil
}

// MarshalHeader renders lines back to SAM header text, the inverse of
// ParseHeader.
func MarshalHeader(lines []HeaderLine) []byte {
	var b bytes.Buffer
	for _, l := range lines {
		switch v := l.(type) {
		case HDLine:
			fmt.Fprintf(&b, "@HD\tVN:%s", v.Version)
			if v.SortOrder != UnknownOrder {
				fmt.Fprintf(&b, "\tSO:%s", v.SortOrder)
			}
			writeExtra(&b, v.Extra)
			b.WriteByte('\n')
		case SQLine:
			fmt.Fprintf(&b, "@SQ\tSN:%s\tLN:%d", v.Name, v.Length)
			writeExtra(&b, v.Extra)
			b.WriteByte('\n')
		case TagLine:
			fmt.Fprintf(&b, "@%s", v.Tag)
			writeExtra(&b, v.Fields)
			b.WriteByte('\n')
		case CommentLine:
			fmt.Fprintf(&b, "@CO\t%s\n", string(v))
		}
	}
	return b.Bytes()
}

func writeExtra(b *bytes.Buffer, fields []Field) {
	for _, f := range fields {
		fmt.Fprintf(b, "\t%s:%s", f.Tag, f.Value)
	}
}

type headerLineNotFirstError int

func (e headerLineNotFirstError) Error() string {
	return fmt.Sprintf("sam: header line %d is not @HD and no @HD has been seen", int(e))
}
