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

package msgpack

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Decoder reads MessagePack bytes into Go values via reflection.
type Decoder struct {
	Options wire.ReadOptions
	ctx     wire.Context
}

// Decode reads one value from buf[off:] into v and returns the offset
// just past it.
func (d *Decoder) Decode(buf []byte, off int, v reflect.Value) (int, error) {
	if d.Options.MaxDepth != 0 {
		d.ctx.MaxDepth = d.Options.MaxDepth
	}
	next := d.decodeValue(buf, off, v)
	if err := d.ctx.Err(); err != nil {
		return next, err
	}
	return next, nil
}

func (d *Decoder) decodeValue(buf []byte, off int, v reflect.Value) int {
	if d.ctx.Failed() {
		return off
	}
	if !d.ctx.Enter(off) {
		return off
	}
	defer d.ctx.Exit()

	if off >= len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
		return off
	}

	for v.Kind() == reflect.Ptr {
		if buf[off] == 0xc0 {
			v.Set(reflect.Zero(v.Type()))
			return off + 1
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface {
		next, err := d.skipValue(buf, off)
		if err != nil {
			return off
		}
		return next
	}

	b := buf[off]
	switch {
	case b <= 0x7f: // positive fixint
		setUint(v, uint64(b))
		return off + 1
	case b >= 0xe0: // negative fixint
		setInt(v, int64(int8(b)))
		return off + 1
	case b>>5 == 0x5: // fixstr 0xa0-0xbf
		n := int(b & 0x1f)
		return d.finishString(buf, off+1, n, v)
	case b>>4 == 0x9: // fixarray
		n := int(b & 0xf)
		return d.decodeArray(buf, off+1, n, v)
	case b>>4 == 0x8: // fixmap
		n := int(b & 0xf)
		return d.decodeMap(buf, off+1, n, v)
	}

	switch b {
	case 0xc0:
		if v.IsValid() && v.CanSet() {
			v.Set(reflect.Zero(v.Type()))
		}
		return off + 1
	case 0xc2:
		setBool(v, false)
		return off + 1
	case 0xc3:
		setBool(v, true)
		return off + 1
	case 0xcc:
		return d.decodeUint(buf, off+1, 1, v)
	case 0xcd:
		return d.decodeUint(buf, off+1, 2, v)
	case 0xce:
		return d.decodeUint(buf, off+1, 4, v)
	case 0xcf:
		return d.decodeUint(buf, off+1, 8, v)
	case 0xd0:
		return d.decodeInt(buf, off+1, 1, v)
	case 0xd1:
		return d.decodeInt(buf, off+1, 2, v)
	case 0xd2:
		return d.decodeInt(buf, off+1, 4, v)
	case 0xd3:
		return d.decodeInt(buf, off+1, 8, v)
	case 0xca:
		return d.decodeFloat32(buf, off+1, v)
	case 0xcb:
		return d.decodeFloat64(buf, off+1, v)
	case 0xd9:
		n, next := int(buf[off+1]), off+2
		return d.finishString(buf, next, n, v)
	case 0xda:
		n := int(binary.BigEndian.Uint16(buf[off+1:]))
		return d.finishString(buf, off+3, n, v)
	case 0xdb:
		n := int(binary.BigEndian.Uint32(buf[off+1:]))
		return d.finishString(buf, off+5, n, v)
	case 0xc4:
		n, next := int(buf[off+1]), off+2
		return d.finishBytes(buf, next, n, v)
	case 0xc5:
		n := int(binary.BigEndian.Uint16(buf[off+1:]))
		return d.finishBytes(buf, off+3, n, v)
	case 0xc6:
		n := int(binary.BigEndian.Uint32(buf[off+1:]))
		return d.finishBytes(buf, off+5, n, v)
	case 0xdc:
		n := int(binary.BigEndian.Uint16(buf[off+1:]))
		return d.decodeArray(buf, off+3, n, v)
	case 0xdd:
		n := int(binary.BigEndian.Uint32(buf[off+1:]))
		return d.decodeArray(buf, off+5, n, v)
	case 0xde:
		n := int(binary.BigEndian.Uint16(buf[off+1:]))
		return d.decodeMap(buf, off+3, n, v)
	case 0xdf:
		n := int(binary.BigEndian.Uint32(buf[off+1:]))
		return d.decodeMap(buf, off+5, n, v)
	case 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xc7, 0xc8, 0xc9:
		return d.decodeExt(buf, off, b, v)
	default:
		d.ctx.Fail(wire.InvalidHeader, off, "unsupported initial byte")
		return off + 1
	}
}

func (d *Decoder) decodeUint(buf []byte, off, width int, v reflect.Value) int {
	end := off + width
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated unsigned int")
		return end
	}
	var n uint64
	switch width {
	case 1:
		n = uint64(buf[off])
	case 2:
		n = uint64(binary.BigEndian.Uint16(buf[off:]))
	case 4:
		n = uint64(binary.BigEndian.Uint32(buf[off:]))
	default:
		n = binary.BigEndian.Uint64(buf[off:])
	}
	setUint(v, n)
	return end
}

func (d *Decoder) decodeInt(buf []byte, off, width int, v reflect.Value) int {
	end := off + width
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated signed int")
		return end
	}
	var n int64
	switch width {
	case 1:
		n = int64(int8(buf[off]))
	case 2:
		n = int64(int16(binary.BigEndian.Uint16(buf[off:])))
	case 4:
		n = int64(int32(binary.BigEndian.Uint32(buf[off:])))
	default:
		n = int64(binary.BigEndian.Uint64(buf[off:]))
	}
	setInt(v, n)
	return end
}

func (d *Decoder) decodeFloat32(buf []byte, off int, v reflect.Value) int {
	end := off + 4
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated float32")
		return end
	}
	setFloat(v, float64(math.Float32frombits(binary.BigEndian.Uint32(buf[off:]))))
	return end
}

func (d *Decoder) decodeFloat64(buf []byte, off int, v reflect.Value) int {
	end := off + 8
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated float64")
		return end
	}
	setFloat(v, math.Float64frombits(binary.BigEndian.Uint64(buf[off:])))
	return end
}

func (d *Decoder) finishString(buf []byte, off, n int, v reflect.Value) int {
	end := off + n
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated string")
		return end
	}
	if v.IsValid() && v.CanSet() && v.Kind() == reflect.String {
		v.SetString(string(buf[off:end]))
	}
	return end
}

func (d *Decoder) finishBytes(buf []byte, off, n int, v reflect.Value) int {
	end := off + n
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated bytes")
		return end
	}
	if v.IsValid() && v.CanSet() && v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		cp := make([]byte, n)
		copy(cp, buf[off:end])
		v.SetBytes(cp)
	}
	return end
}

func (d *Decoder) decodeExt(buf []byte, off int, lead byte, v reflect.Value) int {
	var size, headerLen int
	switch lead {
	case 0xd4:
		size, headerLen = 1, 2
	case 0xd5:
		size, headerLen = 2, 2
	case 0xd6:
		size, headerLen = 4, 2
	case 0xd7:
		size, headerLen = 8, 2
	case 0xd8:
		size, headerLen = 16, 2
	case 0xc7:
		size, headerLen = int(buf[off+1]), 3
	case 0xc8:
		size, headerLen = int(binary.BigEndian.Uint16(buf[off+1:])), 4
	default: // 0xc9
		size, headerLen = int(binary.BigEndian.Uint32(buf[off+1:])), 6
	}
	typeOff := off + headerLen - 1
	dataOff := off + headerLen
	end := dataOff + size
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, dataOff, "truncated extension payload")
		return end
	}
	typ := int8(buf[typeOff])
	data := buf[dataOff:end]

	if typ == extTimestamp {
		t, ok := decodeTimestamp(data)
		if ok && v.IsValid() && v.Type() == timeType {
			v.Set(reflect.ValueOf(t))
		}
		return end
	}
	if v.IsValid() && v.Type() == extensionType {
		cp := make([]byte, len(data))
		copy(cp, data)
		v.Set(reflect.ValueOf(Extension{Code: typ, Data: cp}))
	}
	return end
}

func (d *Decoder) decodeArray(buf []byte, off, count int, v reflect.Value) int {
	if v.Kind() == reflect.Struct {
		return d.decodeArrayIntoStruct(buf, off, count, v)
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		pos := off
		for i := 0; i < count; i++ {
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos
			}
		}
		return pos
	}
	ensureLen(v, count)
	pos := off
	for i := 0; i < count; i++ {
		pos = d.decodeValue(buf, pos, v.Index(i))
		if d.ctx.Failed() {
			return pos
		}
	}
	return pos
}

func (d *Decoder) decodeArrayIntoStruct(buf []byte, off, count int, v reflect.Value) int {
	desc, err := schema.CompileCached(v.Type())
	if err != nil {
		d.ctx.Fail(wire.InvalidBody, off, err.Error())
		return off
	}
	pos := off
	for i := 0; i < count; i++ {
		if i < desc.Size() {
			pos = d.decodeValue(buf, pos, desc.Fields[i].Get(v))
		} else {
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos
			}
		}
		if d.ctx.Failed() {
			return pos
		}
	}
	return pos
}

func (d *Decoder) decodeMap(buf []byte, off, count int, v reflect.Value) int {
	if v.Kind() == reflect.Struct && v.CanAddr() {
		if w, ok := v.Addr().Interface().(wire.OrderedMapWriter); ok {
			return d.decodeMapIntoOrderedMap(buf, off, count, w)
		}
	}
	switch v.Kind() {
	case reflect.Struct:
		return d.decodeMapIntoStruct(buf, off, count, v)
	case reflect.Map:
		if v.IsNil() {
			v.Set(reflect.MakeMapWithSize(v.Type(), count))
		}
		pos := off
		for i := 0; i < count; i++ {
			key := reflect.New(v.Type().Key()).Elem()
			pos = d.decodeValue(buf, pos, key)
			elem := reflect.New(v.Type().Elem()).Elem()
			pos = d.decodeValue(buf, pos, elem)
			if d.ctx.Failed() {
				return pos
			}
			v.SetMapIndex(key, elem)
		}
		return pos
	default:
		pos := off
		for i := 0; i < count*2; i++ {
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos
			}
		}
		return pos
	}
}

// decodeMapIntoOrderedMap decodes a MessagePack map into any
// OrderedMap[K, V] whose pointer implements wire.OrderedMapWriter, in wire
// order, which becomes the map's insertion order.
func (d *Decoder) decodeMapIntoOrderedMap(buf []byte, off, count int, w wire.OrderedMapWriter) int {
	w.MapInit()
	pos := off
	for i := 0; i < count; i++ {
		var key string
		key, pos = d.decodeMapKeyString(buf, pos)
		if d.ctx.Failed() {
			return pos
		}
		valuePtr := w.MapNewValue()
		elem := reflect.ValueOf(valuePtr).Elem()
		pos = d.decodeValue(buf, pos, elem)
		if d.ctx.Failed() {
			return pos
		}
		if err := w.MapInsertString(key, valuePtr); err != nil {
			d.ctx.Fail(wire.InvalidBody, pos, err.Error())
			return pos
		}
	}
	return pos
}

func (d *Decoder) decodeMapIntoStruct(buf []byte, off, count int, v reflect.Value) int {
	desc, err := schema.CompileCached(v.Type())
	if err != nil {
		d.ctx.Fail(wire.InvalidBody, off, err.Error())
		return off
	}
	pos := off
	for i := 0; i < count; i++ {
		var key string
		key, pos = d.decodeMapKeyString(buf, pos)
		if d.ctx.Failed() {
			return pos
		}
		fi, found := desc.Lookup(key)
		if !found {
			if d.Options.ErrorOnUnknownKeys {
				d.ctx.Fail(wire.UnknownKey, pos, "unknown key "+key)
				return pos
			}
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos
			}
			continue
		}
		pos = d.decodeValue(buf, pos, desc.Fields[fi].Get(v))
		if d.ctx.Failed() {
			return pos
		}
	}
	return pos
}

func (d *Decoder) decodeMapKeyString(buf []byte, off int) (string, int) {
	var s string
	next := d.decodeValue(buf, off, reflect.ValueOf(&s).Elem())
	return s, next
}

// skipValue advances past exactly one value: decodeValue with an invalid
// reflect.Value target reads the value without storing it.
func (d *Decoder) skipValue(buf []byte, off int) (int, error) {
	next := d.decodeValue(buf, off, reflect.Value{})
	if d.ctx.Failed() {
		return next, d.ctx.Err()
	}
	return next, nil
}

func ensureLen(v reflect.Value, n int) {
	if v.Kind() == reflect.Slice {
		if v.Cap() < n {
			v.Set(reflect.MakeSlice(v.Type(), n, n))
		} else {
			v.SetLen(n)
		}
	}
}

func setUint(v reflect.Value, n uint64) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(n))
	}
}

func setInt(v reflect.Value, n int64) {
	if v.Kind() >= reflect.Int && v.Kind() <= reflect.Int64 {
		v.SetInt(n)
	}
}

func setFloat(v reflect.Value, f float64) {
	if v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64 {
		v.SetFloat(f)
	}
}

func setBool(v reflect.Value, b bool) {
	if v.Kind() == reflect.Bool {
		v.SetBool(b)
	}
}
