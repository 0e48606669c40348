// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/biogo/htsflow/sam"
)

// maxAuxArrayLen is the safety cap on a 'B' array element count (§4.4).
const maxAuxArrayLen = 4000

// AuxError is one wrong_auxiliary_data failure, tagged with the kind the
// specification names and the byte context it occurred in.
type AuxError struct {
	Kind    string
	Context []byte
}

func (e *AuxError) Error() string {
	return fmt.Sprintf("bam: auxiliary data error %s at %x", e.Kind, e.Context)
}

func auxErr(kind string, ctx []byte) error { return &AuxError{Kind: kind, Context: ctx} }

// DecodeAux decodes a BAM optional-field blob into a sequence of
// OptionalFields, consuming (tag, type, payload) tuples until b is
// exhausted.
func DecodeAux(b []byte) (sam.OptionalFields, error) {
	var fs sam.OptionalFields
	for len(b) > 0 {
		if len(b) < 3 {
			return nil, auxErr("out_of_bounds", b)
		}
		f := sam.OptionalField{Tag: sam.NewTag(string(b[:2])), Type: b[2]}
		rest := b[3:]
		var n int
		var err error
		f.Value, n, err = decodeAuxValue(f.Type, rest)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
		b = rest[n:]
	}
	return fs, nil
}

func decodeAuxValue(typ byte, b []byte) (sam.AuxValue, int, error) {
	var v sam.AuxValue
	switch typ {
	case sam.AuxChar:
		if len(b) < 1 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Char = b[0]
		return v, 1, nil
	case sam.AuxInt8:
		if len(b) < 1 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(int8(b[0]))
		return v, 1, nil
	case sam.AuxUint8:
		if len(b) < 1 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(b[0])
		return v, 1, nil
	case sam.AuxInt16:
		if len(b) < 2 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(int16(binary.LittleEndian.Uint16(b)))
		return v, 2, nil
	case sam.AuxUint16:
		if len(b) < 2 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(binary.LittleEndian.Uint16(b))
		return v, 2, nil
	case sam.AuxInt32:
		if len(b) < 4 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(int32(binary.LittleEndian.Uint32(b)))
		return v, 4, nil
	case sam.AuxUint32:
		if len(b) < 4 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Int = int64(binary.LittleEndian.Uint32(b))
		return v, 4, nil
	case sam.AuxFloat:
		if len(b) < 4 {
			return v, 0, auxErr("out_of_bounds", b)
		}
		v.Float = math.Float32frombits(binary.LittleEndian.Uint32(b))
		return v, 4, nil
	case sam.AuxString:
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return v, 0, auxErr("null_terminated_string", b)
		}
		v.Text = string(b[:i])
		return v, i + 1, nil
	case sam.AuxHex:
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return v, 0, auxErr("null_terminated_hexarray", b)
		}
		v.Text = string(b[:i])
		return v, i + 1, nil
	case sam.AuxArray:
		return decodeAuxArray(b)
	default:
		return v, 0, auxErr(fmt.Sprintf("unknown_type(%c)", typ), b)
	}
}

func decodeAuxArray(b []byte) (sam.AuxValue, int, error) {
	var v sam.AuxValue
	if len(b) < 5 {
		return v, 0, auxErr("out_of_bounds", b)
	}
	sub := b[0]
	n := int(binary.LittleEndian.Uint32(b[1:5]))
	if n > maxAuxArrayLen {
		return v, 0, auxErr(fmt.Sprintf("array_size(%d)", n), b)
	}
	v.SubType = sub
	off := 5
	elemSize, isFloat := auxArrayElemSize(sub)
	if elemSize == 0 {
		return v, 0, auxErr(fmt.Sprintf("unknown_type(%c)", sub), b)
	}
	if len(b) < off+n*elemSize {
		return v, 0, auxErr("out_of_bounds", b)
	}
	for i := 0; i < n; i++ {
		e := b[off+i*elemSize : off+(i+1)*elemSize]
		if isFloat {
			v.Floats = append(v.Floats, math.Float32frombits(binary.LittleEndian.Uint32(e)))
			continue
		}
		v.Ints = append(v.Ints, decodeAuxArrayInt(sub, e))
	}
	return v, off + n*elemSize, nil
}

func auxArrayElemSize(sub byte) (size int, isFloat bool) {
	switch sub {
	case sam.AuxInt8, sam.AuxUint8:
		return 1, false
	case sam.AuxInt16, sam.AuxUint16:
		return 2, false
	case sam.AuxInt32, sam.AuxUint32:
		return 4, false
	case sam.AuxFloat:
		return 4, true
	default:
		return 0, false
	}
}

func decodeAuxArrayInt(sub byte, e []byte) int64 {
	switch sub {
	case sam.AuxInt8:
		return int64(int8(e[0]))
	case sam.AuxUint8:
		return int64(e[0])
	case sam.AuxInt16:
		return int64(int16(binary.LittleEndian.Uint16(e)))
	case sam.AuxUint16:
		return int64(binary.LittleEndian.Uint16(e))
	case sam.AuxInt32:
		return int64(int32(binary.LittleEndian.Uint32(e)))
	case sam.AuxUint32:
		return int64(binary.LittleEndian.Uint32(e))
	}
	return 0
}

// EncodeAux is the inverse of DecodeAux: string fields are emitted with a
// trailing NUL, hex arrays as their stored hex text, unchanged, followed by
// a NUL.
func EncodeAux(fs sam.OptionalFields) []byte {
	var b bytes.Buffer
	for _, f := range fs {
		b.Write(f.Tag[:])
		b.WriteByte(f.Type)
		encodeAuxValue(&b, f.Type, f.Value)
	}
	return b.Bytes()
}

func encodeAuxValue(b *bytes.Buffer, typ byte, v sam.AuxValue) {
	var buf [4]byte
	switch typ {
	case sam.AuxChar:
		b.WriteByte(v.Char)
	case sam.AuxInt8, sam.AuxUint8:
		b.WriteByte(byte(v.Int))
	case sam.AuxInt16, sam.AuxUint16:
		binary.LittleEndian.PutUint16(buf[:2], uint16(v.Int))
		b.Write(buf[:2])
	case sam.AuxInt32, sam.AuxUint32:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v.Int))
		b.Write(buf[:4])
	case sam.AuxFloat:
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v.Float))
		b.Write(buf[:4])
	case sam.AuxString:
		b.WriteString(v.Text)
		b.WriteByte(0)
	case sam.AuxHex:
		b.WriteString(v.Text)
		b.WriteByte(0)
	case sam.AuxArray:
		encodeAuxArray(b, v)
	}
}

func encodeAuxArray(b *bytes.Buffer, v sam.AuxValue) {
	var lenBuf [4]byte
	b.WriteByte(v.SubType)
	n := len(v.Ints) + len(v.Floats)
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(n))
	b.Write(lenBuf[:])
	elemSize, isFloat := auxArrayElemSize(v.SubType)
	if isFloat {
		var buf [4]byte
		for _, f := range v.Floats {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			b.Write(buf[:])
		}
		return
	}
	for _, n := range v.Ints {
		buf := make([]byte, elemSize)
		switch elemSize {
		case 1:
			buf[0] = byte(n)
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(n))
		case 4:
			binary.LittleEndian.PutUint32(buf, uint32(n))
		}
		b.Write(buf)
	}
}
