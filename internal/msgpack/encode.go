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

// Package msgpack implements the MessagePack codec: the core
// format plus the timestamp extension type (-1) and a passthrough
// Extension value for any other ext type a document carries.
package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

var timeType = reflect.TypeOf(time.Time{})

// Extension is a passthrough value for MessagePack ext types this codec
// doesn't interpret (every ext type besides -1/timestamp). It is a type
// alias to wire.Extension so internal/schema can recognize it by exact
// reflect.Type equality without importing this package.
type Extension = wire.Extension

var extensionType = wire.ExtensionType

// Encoder writes Go values as MessagePack bytes.
type Encoder struct {
	Options wire.WriteOptions
	ctx     wire.Context
}

// Encode appends v's MessagePack encoding to buf.
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
			return append(buf, 0xc0)
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Struct {
		switch v.Type() {
		case timeType:
			return e.encodeExt(buf, extTimestamp, encodeTimestamp(v.Interface().(time.Time)))
		case extensionType:
			ext := v.Interface().(Extension)
			return e.encodeExt(buf, ext.Code, ext.Data)
		}
	}

	switch v.Kind() {
	case reflect.Invalid:
		return append(buf, 0xc0)
	case reflect.Bool:
		if v.Bool() {
			return append(buf, 0xc3)
		}
		return append(buf, 0xc2)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeSigned(buf, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUnsigned(buf, v.Uint())
	case reflect.Float32:
		buf = append(buf, 0xca)
		return appendUint32(buf, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		buf = append(buf, 0xcb)
		return appendUint64(buf, math.Float64bits(v.Float()))
	case reflect.String:
		return encodeString(buf, v.String())
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

func (e *Encoder) encodeExt(buf []byte, typ int8, data []byte) []byte {
	n := len(data)
	switch n {
	case 1:
		buf = append(buf, 0xd4, byte(typ))
	case 2:
		buf = append(buf, 0xd5, byte(typ))
	case 4:
		buf = append(buf, 0xd6, byte(typ))
	case 8:
		buf = append(buf, 0xd7, byte(typ))
	case 16:
		buf = append(buf, 0xd8, byte(typ))
	default:
		switch {
		case n <= 0xff:
			buf = append(buf, 0xc7, byte(n), byte(typ))
		case n <= 0xffff:
			buf = append(buf, 0xc8)
			buf = appendUint16(buf, uint16(n))
			buf = append(buf, byte(typ))
		default:
			buf = append(buf, 0xc9)
			buf = appendUint32(buf, uint32(n))
			buf = append(buf, byte(typ))
		}
	}
	return append(buf, data...)
}

func encodeSigned(buf []byte, n int64) []byte {
	switch {
	case n >= 0 && n <= 0x7f:
		return append(buf, byte(n))
	case n < 0 && n >= -32:
		return append(buf, byte(0xe0|(n+32)))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		return append(buf, 0xd0, byte(n))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		buf = append(buf, 0xd1)
		return appendUint16(buf, uint16(n))
	case n >= math.MinInt32 && n <= math.MaxInt32:
		buf = append(buf, 0xd2)
		return appendUint32(buf, uint32(n))
	default:
		buf = append(buf, 0xd3)
		return appendUint64(buf, uint64(n))
	}
}

func encodeUnsigned(buf []byte, n uint64) []byte {
	switch {
	case n <= 0x7f:
		return append(buf, byte(n))
	case n <= math.MaxUint8:
		return append(buf, 0xcc, byte(n))
	case n <= math.MaxUint16:
		buf = append(buf, 0xcd)
		return appendUint16(buf, uint16(n))
	case n <= math.MaxUint32:
		buf = append(buf, 0xce)
		return appendUint32(buf, uint32(n))
	default:
		buf = append(buf, 0xcf)
		return appendUint64(buf, n)
	}
}

func encodeString(buf []byte, s string) []byte {
	n := len(s)
	switch {
	case n <= 31:
		buf = append(buf, 0xa0|byte(n))
	case n <= 0xff:
		buf = append(buf, 0xd9, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xda)
		buf = appendUint16(buf, uint16(n))
	default:
		buf = append(buf, 0xdb)
		buf = appendUint32(buf, uint32(n))
	}
	return append(buf, s...)
}

func encodeBinHeader(buf []byte, n int) []byte {
	switch {
	case n <= 0xff:
		return append(buf, 0xc4, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xc5)
		return appendUint16(buf, uint16(n))
	default:
		buf = append(buf, 0xc6)
		return appendUint32(buf, uint32(n))
	}
}

func encodeArrayHeader(buf []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(buf, 0x90|byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xdc)
		return appendUint16(buf, uint16(n))
	default:
		buf = append(buf, 0xdd)
		return appendUint32(buf, uint32(n))
	}
}

func encodeMapHeader(buf []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(buf, 0x80|byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xde)
		return appendUint16(buf, uint16(n))
	default:
		buf = append(buf, 0xdf)
		return appendUint32(buf, uint32(n))
	}
}

func (e *Encoder) encodeSequence(buf []byte, v reflect.Value) []byte {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		bs := toByteSlice(v)
		buf = encodeBinHeader(buf, len(bs))
		return append(buf, bs...)
	}
	buf = encodeArrayHeader(buf, v.Len())
	for i := 0; i < v.Len(); i++ {
		buf = e.encodeValue(buf, v.Index(i))
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

func (e *Encoder) encodeMap(buf []byte, v reflect.Value) []byte {
	buf = encodeMapHeader(buf, v.Len())
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

	if e.Options.StructsAsArrays {
		buf = encodeArrayHeader(buf, d.Size())
		for i := range d.Fields {
			buf = e.encodeValue(buf, d.Fields[i].Get(v))
			if e.ctx.Failed() {
				return buf
			}
		}
		return buf
	}

	n := 0
	for i := range d.Fields {
		if (e.Options.SkipNullMembers || d.Fields[i].OmitNull) && isEmptyValue(d.Fields[i].Get(v)) {
			continue
		}
		n++
	}
	buf = encodeMapHeader(buf, n)
	for i := range d.Fields {
		f := &d.Fields[i]
		fv := f.Get(v)
		if (e.Options.SkipNullMembers || f.OmitNull) && isEmptyValue(fv) {
			continue
		}
		buf = encodeString(buf, f.Name)
		buf = e.encodeValue(buf, fv)
		if e.ctx.Failed() {
			return buf
		}
	}
	return buf
}

// encodeOrderedMap writes r's entries, in insertion order, as a MessagePack
// map — the generic counterpart to encodeMap for types that implement the
// OrderedMapReflector contract instead of being a reflect.Map.
func (e *Encoder) encodeOrderedMap(buf []byte, r wire.OrderedMapReader) []byte {
	n := r.MapLen()
	buf = encodeMapHeader(buf, n)
	for i := 0; i < n; i++ {
		k, val := r.MapEntry(i)
		buf = encodeString(buf, orderedMapKeyString(k))
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

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
