// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "fmt"

// Tag is a two-character optional-field tag, e.g. "NM" or "RG".
type Tag [2]byte

// NewTag returns the Tag for a two-character string.
func NewTag(tag string) Tag {
	var t Tag
	copy(t[:], tag)
	return t
}

func (t Tag) String() string { return string(t[:]) }

// Aux type codes, one per §4.4 of the wire format.
const (
	AuxChar   = 'A'
	AuxInt8   = 'c'
	AuxUint8  = 'C'
	AuxInt16  = 's'
	AuxUint16 = 'S'
	AuxInt32  = 'i'
	AuxUint32 = 'I'
	AuxFloat  = 'f'
	AuxString = 'Z'
	AuxHex    = 'H'
	AuxArray  = 'B'
)

// AuxValue is the decoded value of an optional field. Exactly one of its
// accessors is meaningful for a given Type; which one is determined by the
// OptionalField's Type byte.
type AuxValue struct {
	Char    byte
	Int     int64
	Float   float32
	Text    string // holds both Z (string) and H (hex) text forms.
	SubType byte   // element type code for an array value.
	Ints    []int64
	Floats  []float32
}

// OptionalField is one decoded SAM/BAM optional field: a tag, its SAM type
// code, and the value under that type.
type OptionalField struct {
	Tag   Tag
	Type  byte
	Value AuxValue
}

// String renders f in SAM text form, e.g. "NM:i:5" or "ZA:B:i,1,2,3".
func (f OptionalField) String() string {
	switch f.Type {
	case AuxChar:
		return fmt.Sprintf("%s:A:%c", f.Tag, f.Value.Char)
	case AuxInt8, AuxUint8, AuxInt16, AuxUint16, AuxInt32, AuxUint32:
		return fmt.Sprintf("%s:i:%d", f.Tag, f.Value.Int)
	case AuxFloat:
		return fmt.Sprintf("%s:f:%g", f.Tag, f.Value.Float)
	case AuxString:
		return fmt.Sprintf("%s:Z:%s", f.Tag, f.Value.Text)
	case AuxHex:
		return fmt.Sprintf("%s:H:%s", f.Tag, f.Value.Text)
	case AuxArray:
		b := []byte(fmt.Sprintf("%s:B:%c", f.Tag, f.Value.SubType))
		if isFloatArraySubType(f.Value.SubType) {
			for _, v := range f.Value.Floats {
				b = append(b, fmt.Sprintf(",%g", v)...)
			}
		} else {
			for _, v := range f.Value.Ints {
				b = append(b, fmt.Sprintf(",%d", v)...)
			}
		}
		return string(b)
	default:
		return fmt.Sprintf("%s:?:%c", f.Tag, f.Type)
	}
}

func isFloatArraySubType(t byte) bool { return t == AuxFloat }

// OptionalFields is an ordered list of optional fields, as carried by an
// alignment item.
type OptionalFields []OptionalField

// Get returns the first field tagged t, and whether one was found.
func (fs OptionalFields) Get(t Tag) (OptionalField, bool) {
	for _, f := range fs {
		if f.Tag == t {
			return f, true
		}
	}
	return OptionalField{}, false
}
