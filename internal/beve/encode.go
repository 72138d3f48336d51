// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package beve

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Encoder writes Go values as BEVE bytes. It holds no state across top
// level calls besides the wire.Context, matching the "pure function of
// (value, options, buffer, context)" rule.
type Encoder struct {
	Options wire.WriteOptions
	ctx     wire.Context
}

// Encode appends v's BEVE encoding to buf and returns the grown slice.
func (e *Encoder) Encode(buf []byte, v reflect.Value) ([]byte, error) {
	buf = e.encodeValue(buf, v)
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (e *Encoder) encodeValue(buf []byte, v reflect.Value) []byte {
	if e.ctx.Failed() {
		return buf
	}
	if !e.ctx.Enter(len(buf)) {
		return buf
	}
	defer e.ctx.Exit()

	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return append(buf, nullTag())
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Struct && v.Type() == timeType {
		return e.encodeString(buf, formatTimestamp(v.Interface().(time.Time)))
	}

	switch v.Kind() {
	case reflect.Invalid:
		return append(buf, nullTag())
	case reflect.Bool:
		return append(buf, boolTag(v.Bool()))
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return e.encodeSigned(buf, v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return e.encodeUnsigned(buf, v.Uint())
	case reflect.Float32:
		return e.encodeFloat(buf, float64(v.Float()), 4)
	case reflect.Float64:
		return e.encodeFloat(buf, v.Float(), 8)
	case reflect.String:
		return e.encodeString(buf, v.String())
	case reflect.Complex64:
		return e.encodeComplex(buf, v.Complex(), 4)
	case reflect.Complex128:
		return e.encodeComplex(buf, v.Complex(), 8)
	case reflect.Slice, reflect.Array:
		return e.encodeSequence(buf, v)
	case reflect.Map:
		return e.encodeMap(buf, v)
	case reflect.Struct:
		if schema.NamedShapeOf(v.Type()) == schema.NamedMatrix {
			return e.encodeMatrix(buf, v)
		}
		return e.encodeStruct(buf, v)
	default:
		e.ctx.Fail(wire.InvalidBody, len(buf), "unsupported type "+v.Type().String())
		return buf
	}
}

func (e *Encoder) encodeSigned(buf []byte, n int64) []byte {
	switch {
	case n >= math.MinInt8 && n <= math.MaxInt8:
		return append(buf, numberTag(numSigned, 1), byte(n))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		buf = append(buf, numberTag(numSigned, 2))
		return appendUint16(buf, uint16(n))
	case n >= math.MinInt32 && n <= math.MaxInt32:
		buf = append(buf, numberTag(numSigned, 4))
		return appendUint32(buf, uint32(n))
	default:
		buf = append(buf, numberTag(numSigned, 8))
		return appendUint64(buf, uint64(n))
	}
}

func (e *Encoder) encodeUnsigned(buf []byte, n uint64) []byte {
	switch {
	case n <= math.MaxUint8:
		return append(buf, numberTag(numUint, 1), byte(n))
	case n <= math.MaxUint16:
		buf = append(buf, numberTag(numUint, 2))
		return appendUint16(buf, uint16(n))
	case n <= math.MaxUint32:
		buf = append(buf, numberTag(numUint, 4))
		return appendUint32(buf, uint32(n))
	default:
		buf = append(buf, numberTag(numUint, 8))
		return appendUint64(buf, n)
	}
}

// encodeFloat always writes at the requested native width (4 or 8); BEVE's
// "preferred serialization" narrowing (to float16) is a CBOR-specific
// option, not part of the BEVE wire rules.
func (e *Encoder) encodeFloat(buf []byte, f float64, width int) []byte {
	if width == 4 {
		buf = append(buf, numberTag(numFloat, 4))
		return appendUint32(buf, math.Float32bits(float32(f)))
	}
	buf = append(buf, numberTag(numFloat, 8))
	return appendUint64(buf, math.Float64bits(f))
}

func (e *Encoder) encodeString(buf []byte, s string) []byte {
	buf = append(buf, stringTag())
	buf = writeCompressedInt(buf, uint64(len(s)))
	return append(buf, s...)
}

// encodeComplex writes a scalar complex-extension value: the extension
// tag, a header byte (bit 0 clear selects scalar, bits 5..7 carry the
// per-component width via the same countIndex table numbers/typed arrays
// use), then the real and imaginary components raw at that width.
func (e *Encoder) encodeComplex(buf []byte, c complex128, width int) []byte {
	buf = append(buf, extensionTag(extComplex))
	buf = append(buf, countIndex(width)<<5)
	buf = appendComplexComponent(buf, real(c), width)
	return appendComplexComponent(buf, imag(c), width)
}

func appendComplexComponent(buf []byte, f float64, width int) []byte {
	if width == 4 {
		return appendUint32(buf, math.Float32bits(float32(f)))
	}
	return appendUint64(buf, math.Float64bits(f))
}

// encodeMatrix writes a polyglot.Matrix[T] (identified structurally by its
// Rows/Cols/RowMajor/Data fields) as a matrix-extension value: the
// extension tag, a header byte whose bit 0 carries the row/column-major
// flag, the extents as a 2-element int vector, then the flattened data as
// an ordinary value.
func (e *Encoder) encodeMatrix(buf []byte, v reflect.Value) []byte {
	rows := v.FieldByName("Rows").Int()
	cols := v.FieldByName("Cols").Int()
	rowMajor := v.FieldByName("RowMajor").Bool()
	data := v.FieldByName("Data")

	buf = append(buf, extensionTag(extMatrix))
	header := byte(0)
	if rowMajor {
		header = 1
	}
	buf = append(buf, header)
	buf = e.encodeValue(buf, reflect.ValueOf([]int64{rows, cols}))
	return e.encodeValue(buf, data)
}

func (e *Encoder) encodeSequence(buf []byte, v reflect.Value) []byte {
	elemKind := v.Type().Elem().Kind()
	if elemKind == reflect.Uint8 {
		bs := toByteSlice(v)
		buf = append(buf, typedArrayTag(numUint, 1))
		buf = writeCompressedInt(buf, uint64(len(bs)))
		return append(buf, bs...)
	}
	if width, numType, ok := fixedNumericWidth(elemKind); ok {
		buf = append(buf, typedArrayTag(numType, width))
		buf = writeCompressedInt(buf, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			buf = appendFixedNumeric(buf, v.Index(i), width, numType)
		}
		return buf
	}
	if elemKind == reflect.String {
		buf = append(buf, typedStringArrayTag())
		buf = writeCompressedInt(buf, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			s := v.Index(i).String()
			buf = writeCompressedInt(buf, uint64(len(s)))
			buf = append(buf, s...)
		}
		return buf
	}

	buf = append(buf, genericArrayTag())
	buf = writeCompressedInt(buf, uint64(v.Len()))
	for i := 0; i < v.Len(); i++ {
		buf = e.encodeValue(buf, v.Index(i))
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

func (e *Encoder) encodeMap(buf []byte, v reflect.Value) []byte {
	keyKind := v.Type().Key().Kind()
	var tagKeyKind byte
	switch {
	case keyKind == reflect.String:
		tagKeyKind = keyString
	case isSignedKind(keyKind):
		tagKeyKind = keySigned
	case isUnsignedKind(keyKind):
		tagKeyKind = keyUint
	default:
		e.ctx.Fail(wire.InvalidBody, len(buf), "unsupported map key type "+v.Type().Key().String())
		return buf
	}

	buf = append(buf, objectTag(tagKeyKind))
	buf = writeCompressedInt(buf, uint64(v.Len()))

	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		switch tagKeyKind {
		case keyString:
			s := k.String()
			buf = writeCompressedInt(buf, uint64(len(s)))
			buf = append(buf, s...)
		case keySigned:
			buf = writeCompressedInt(buf, zigzagEncode(k.Int()))
		case keyUint:
			buf = writeCompressedInt(buf, k.Uint())
		}
		buf = e.encodeValue(buf, iter.Value())
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

func (e *Encoder) encodeStruct(buf []byte, v reflect.Value) []byte {
	if r, ok := v.Interface().(wire.OrderedMapReader); ok {
		return e.encodeOrderedMap(buf, r)
	}

	d, err := schema.CompileCached(v.Type())
	if err != nil {
		e.ctx.Fail(wire.InvalidBody, len(buf), err.Error())
		return buf
	}

	n := 0
	for i := range d.Fields {
		f := &d.Fields[i]
		if !((e.Options.SkipNullMembers || f.OmitNull) && isEmptyValue(f.Get(v))) {
			n++
		}
	}
	buf = append(buf, objectTag(keyString))
	buf = writeCompressedInt(buf, uint64(n))
	for i := range d.Fields {
		f := &d.Fields[i]
		fv := f.Get(v)
		if (e.Options.SkipNullMembers || f.OmitNull) && isEmptyValue(fv) {
			continue
		}
		buf = writeCompressedInt(buf, uint64(len(f.Name)))
		buf = append(buf, f.Name...)
		buf = e.encodeValue(buf, fv)
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

// encodeOrderedMap writes r's entries, in insertion order, as a
// string-keyed BEVE object — the generic counterpart to encodeMap for
// types that implement the OrderedMapReflector contract instead of being
// a reflect.Map.
func (e *Encoder) encodeOrderedMap(buf []byte, r wire.OrderedMapReader) []byte {
	n := r.MapLen()
	buf = append(buf, objectTag(keyString))
	buf = writeCompressedInt(buf, uint64(n))
	for i := 0; i < n; i++ {
		k, val := r.MapEntry(i)
		s := orderedMapKeyString(k)
		buf = writeCompressedInt(buf, uint64(len(s)))
		buf = append(buf, s...)
		buf = e.encodeValue(buf, reflect.ValueOf(val))
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

func orderedMapKeyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}

func fixedNumericWidth(k reflect.Kind) (width int, numType byte, ok bool) {
	switch k {
	case reflect.Int8:
		return 1, numSigned, true
	case reflect.Int16:
		return 2, numSigned, true
	case reflect.Int32, reflect.Int:
		return 4, numSigned, true
	case reflect.Int64:
		return 8, numSigned, true
	case reflect.Uint16:
		return 2, numUint, true
	case reflect.Uint32, reflect.Uint:
		return 4, numUint, true
	case reflect.Uint64:
		return 8, numUint, true
	case reflect.Float32:
		return 4, numFloat, true
	case reflect.Float64:
		return 8, numFloat, true
	default:
		return 0, 0, false
	}
}

func appendFixedNumeric(buf []byte, v reflect.Value, width int, numType byte) []byte {
	switch numType {
	case numFloat:
		if width == 4 {
			return appendUint32(buf, math.Float32bits(float32(v.Float())))
		}
		return appendUint64(buf, math.Float64bits(v.Float()))
	case numSigned:
		switch width {
		case 1:
			return append(buf, byte(v.Int()))
		case 2:
			return appendUint16(buf, uint16(v.Int()))
		case 4:
			return appendUint32(buf, uint32(v.Int()))
		default:
			return appendUint64(buf, uint64(v.Int()))
		}
	default: // numUint
		switch width {
		case 1:
			return append(buf, byte(v.Uint()))
		case 2:
			return appendUint16(buf, uint16(v.Uint()))
		case 4:
			return appendUint32(buf, uint32(v.Uint()))
		default:
			return appendUint64(buf, v.Uint())
		}
	}
}

func isSignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toByteSlice(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}

func zigzagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func zigzagDecode(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
