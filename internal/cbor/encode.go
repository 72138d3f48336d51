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

package cbor

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Encoder writes Go values as CBOR bytes.
type Encoder struct {
	Options wire.WriteOptions
	ctx     wire.Context
}

// Encode appends v's CBOR encoding to buf.
func (e *Encoder) Encode(buf []byte, v reflect.Value) ([]byte, error) {
	buf = e.encodeValue(buf, v)
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

var timeType = reflect.TypeOf(time.Time{})

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
			return append(buf, majSimple<<5|simpleNull)
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Struct && v.Type() == timeType {
		return e.encodeTimestamp(buf, v.Interface().(time.Time))
	}

	switch v.Kind() {
	case reflect.Invalid:
		return append(buf, majSimple<<5|simpleNull)
	case reflect.Bool:
		if v.Bool() {
			return append(buf, majSimple<<5|simpleTrue)
		}
		return append(buf, majSimple<<5|simpleFalse)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.encodeSigned(buf, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return appendHead(buf, majUnsigned, v.Uint())
	case reflect.Float32:
		return e.encodeFloat(buf, float64(v.Float()), true)
	case reflect.Float64:
		return e.encodeFloat(buf, v.Float(), false)
	case reflect.String:
		s := v.String()
		buf = appendHead(buf, majText, uint64(len(s)))
		return append(buf, s...)
	case reflect.Complex64, reflect.Complex128:
		return e.encodeComplex(buf, v.Complex())
	case reflect.Slice, reflect.Array:
		return e.encodeSequence(buf, v)
	case reflect.Map:
		return e.encodeMap(buf, v)
	case reflect.Struct:
		return e.encodeStruct(buf, v)
	default:
		e.ctx.Fail(wire.InvalidBody, len(buf), "unsupported type "+v.Type().String())
		return buf
	}
}

func (e *Encoder) encodeSigned(buf []byte, n int64) []byte {
	if n >= 0 {
		return appendHead(buf, majUnsigned, uint64(n))
	}
	return appendHead(buf, majNegative, uint64(-1-n))
}

// encodeFloat picks the narrowest exact IEEE width, per RFC 8949's
// preferred serialization for floating point: float16 if exact,
// else float32 if exact (or the value started as a Go float32), else
// float64.
func (e *Encoder) encodeFloat(buf []byte, f float64, fromFloat32 bool) []byte {
	exact32 := fromFloat32 || float64(float32(f)) == f || math.IsNaN(f)
	if bits, ok := wire.Float32ToFloat16(float32(f)); ok && exact32 {
		buf = append(buf, majSimple<<5|simpleF16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], bits)
		return append(buf, tmp[:]...)
	}
	if exact32 {
		buf = append(buf, majSimple<<5|simpleF32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], math.Float32bits(float32(f)))
		return append(buf, tmp[:]...)
	}
	buf = append(buf, majSimple<<5|simpleF64)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(f))
	return append(buf, tmp[:]...)
}

// encodeTimestamp writes a tag-1 epoch timestamp (RFC 8949 §3.4.2): a tag
// head followed by a float (or integer, for whole seconds) count of
// seconds since the Unix epoch.
func (e *Encoder) encodeTimestamp(buf []byte, t time.Time) []byte {
	buf = appendHead(buf, majTag, tagTimestampEpoch)
	sec := t.UnixNano()
	if sec%1e9 == 0 {
		return e.encodeSigned(buf, sec/1e9)
	}
	return e.encodeFloat(buf, float64(sec)/1e9, false)
}

// encodeComplex writes a tagComplexScalar value: the tag head followed by
// a 2-element array of [real, imag] floats.
func (e *Encoder) encodeComplex(buf []byte, c complex128) []byte {
	buf = appendHead(buf, majTag, tagComplexScalar)
	buf = appendHead(buf, majArray, 2)
	buf = e.encodeFloat(buf, real(c), false)
	return e.encodeFloat(buf, imag(c), false)
}

func (e *Encoder) encodeSequence(buf []byte, v reflect.Value) []byte {
	elemKind := v.Type().Elem().Kind()
	if elemKind == reflect.Uint8 {
		bs := toByteSlice(v)
		buf = appendHead(buf, majBytes, uint64(len(bs)))
		return append(buf, bs...)
	}
	if tag, width, ok := typedArrayTag(elemKind); ok {
		buf = appendHead(buf, majTag, tag)
		buf = appendHead(buf, majBytes, uint64(v.Len()*width))
		for i := 0; i < v.Len(); i++ {
			buf = appendFixedLE(buf, v.Index(i), elemKind, width)
		}
		return buf
	}

	buf = appendHead(buf, majArray, uint64(v.Len()))
	for i := 0; i < v.Len(); i++ {
		buf = e.encodeValue(buf, v.Index(i))
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

func (e *Encoder) encodeMap(buf []byte, v reflect.Value) []byte {
	buf = appendHead(buf, majMap, uint64(v.Len()))
	iter := v.MapRange()
	for iter.Next() {
		buf = e.encodeValue(buf, iter.Key())
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
		if (e.Options.SkipNullMembers || f.OmitNull) && isEmptyValue(f.Get(v)) {
			continue
		}
		n++
	}

	buf = appendHead(buf, majMap, uint64(n))
	for i := range d.Fields {
		f := &d.Fields[i]
		fv := f.Get(v)
		if (e.Options.SkipNullMembers || f.OmitNull) && isEmptyValue(fv) {
			continue
		}
		buf = appendHead(buf, majText, uint64(len(f.Name)))
		buf = append(buf, f.Name...)
		buf = e.encodeValue(buf, fv)
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

// encodeOrderedMap writes r's entries, in insertion order, as a text-keyed
// CBOR map — the generic counterpart to encodeMap for types that
// implement the OrderedMapReflector contract instead of being a
// reflect.Map.
func (e *Encoder) encodeOrderedMap(buf []byte, r wire.OrderedMapReader) []byte {
	n := r.MapLen()
	buf = appendHead(buf, majMap, uint64(n))
	for i := 0; i < n; i++ {
		k, val := r.MapEntry(i)
		s := orderedMapKeyString(k)
		buf = appendHead(buf, majText, uint64(len(s)))
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

func appendFixedLE(buf []byte, v reflect.Value, kind reflect.Kind, width int) []byte {
	switch kind {
	case reflect.Float32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(float32(v.Float())))
		return append(buf, tmp[:]...)
	case reflect.Float64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Float()))
		return append(buf, tmp[:]...)
	}
	var u uint64
	if v.CanInt() {
		u = uint64(v.Int())
	} else {
		u = v.Uint()
	}
	switch width {
	case 1:
		return append(buf, byte(u))
	case 2:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(u))
		return append(buf, tmp[:]...)
	case 4:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(u))
		return append(buf, tmp[:]...)
	default:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], u)
		return append(buf, tmp[:]...)
	}
}
