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
	"math"
	"reflect"
	"time"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Decoder reads CBOR bytes into Go values via reflection.
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

	for v.Kind() == reflect.Ptr {
		maj, arg, headNext, ok := readHead(buf, off)
		if ok && maj == majSimple && arg == simpleNull {
			v.Set(reflect.Zero(v.Type()))
			return headNext
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

	maj, arg, next, ok := readHead(buf, off)
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
		return off
	}

	switch maj {
	case majUnsigned:
		if !setUint(v, arg) {
			d.ctx.Fail(wire.GetWrongType, off, "expected unsigned integer target")
		}
		return next
	case majNegative:
		n := -1 - int64(arg)
		if !setInt(v, n) {
			d.ctx.Fail(wire.GetWrongType, off, "expected signed integer target")
		}
		return next
	case majBytes:
		end := next + int(arg)
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated byte string")
			return end
		}
		if !setBytes(v, buf[next:end]) {
			d.ctx.Fail(wire.GetWrongType, off, "expected []byte target")
		}
		return end
	case majText:
		end := next + int(arg)
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated text string")
			return end
		}
		if !setString(v, string(buf[next:end])) {
			d.ctx.Fail(wire.GetWrongType, off, "expected string target")
		}
		return end
	case majArray:
		return d.decodeArray(buf, next, int(arg), v)
	case majMap:
		return d.decodeMap(buf, next, int(arg), v)
	case majTag:
		return d.decodeTagged(buf, off, next, arg, v)
	case majSimple:
		return d.decodeSimple(buf, off, arg, next, v)
	default:
		d.ctx.Fail(wire.InvalidHeader, off, "unsupported major type")
		return next
	}
}

func (d *Decoder) decodeSimple(buf []byte, off int, arg uint64, next int, v reflect.Value) int {
	switch arg {
	case simpleFalse, simpleTrue:
		if v.Kind() != reflect.Bool {
			d.ctx.Fail(wire.GetWrongType, off, "expected bool target")
			return next
		}
		v.SetBool(arg == simpleTrue)
		return next
	case simpleNull, simpleUndef:
		if v.IsValid() && v.CanSet() {
			v.Set(reflect.Zero(v.Type()))
		}
		return next
	case simpleF16:
		end := next + 2
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated float16")
			return end
		}
		f := wire.Float16ToFloat32(binary.BigEndian.Uint16(buf[next:end]))
		setFloat(v, float64(f))
		return end
	case simpleF32:
		end := next + 4
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated float32")
			return end
		}
		f := math.Float32frombits(binary.BigEndian.Uint32(buf[next:end]))
		setFloat(v, float64(f))
		return end
	case simpleF64:
		end := next + 8
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated float64")
			return end
		}
		f := math.Float64frombits(binary.BigEndian.Uint64(buf[next:end]))
		setFloat(v, f)
		return end
	default:
		d.ctx.Fail(wire.InvalidBody, off, "unsupported simple value")
		return next
	}
}

func (d *Decoder) decodeTagged(buf []byte, tagOff, valOff int, tag uint64, v reflect.Value) int {
	switch tag {
	case tagTimestampEpoch:
		return d.decodeTimestamp(buf, valOff, v)
	case tagComplexScalar:
		return d.decodeComplex(buf, valOff, v)
	default:
		if elemKind, width, ok := typedArrayKindFor(tag); ok {
			return d.decodeTypedArray(buf, valOff, elemKind, width, v)
		}
		// Unknown tag: decode the tagged value itself and discard the tag.
		return d.decodeValue(buf, valOff, v)
	}
}

func (d *Decoder) decodeTimestamp(buf []byte, off int, v reflect.Value) int {
	maj, arg, next, ok := readHead(buf, off)
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated timestamp")
		return off
	}
	var sec float64
	switch maj {
	case majUnsigned:
		sec = float64(arg)
	case majNegative:
		sec = float64(-1 - int64(arg))
	case majSimple:
		return d.decodeTimestampFloat(buf, off, arg, next, v)
	default:
		d.ctx.Fail(wire.InvalidBody, off, "invalid timestamp payload")
		return next
	}
	if v.Type() == timeType {
		v.Set(reflect.ValueOf(time.Unix(int64(sec), 0).UTC()))
	}
	return next
}

func (d *Decoder) decodeTimestampFloat(buf []byte, off int, arg uint64, next int, v reflect.Value) int {
	var f float64
	switch arg {
	case simpleF16:
		end := next + 2
		f = float64(wire.Float16ToFloat32(binary.BigEndian.Uint16(buf[next:end])))
		next = end
	case simpleF32:
		end := next + 4
		f = float64(math.Float32frombits(binary.BigEndian.Uint32(buf[next:end])))
		next = end
	case simpleF64:
		end := next + 8
		f = math.Float64frombits(binary.BigEndian.Uint64(buf[next:end]))
		next = end
	}
	if v.Type() == timeType {
		whole := int64(f)
		frac := f - float64(whole)
		v.Set(reflect.ValueOf(time.Unix(whole, int64(frac*1e9)).UTC()))
	}
	return next
}

func (d *Decoder) decodeComplex(buf []byte, off int, v reflect.Value) int {
	maj, arg, next, ok := readHead(buf, off)
	if !ok || maj != majArray || arg != 2 {
		d.ctx.Fail(wire.InvalidBody, off, "malformed complex value")
		return off
	}
	var re, im float64
	reV := reflect.ValueOf(&re).Elem()
	next = d.decodeValue(buf, next, reV)
	imV := reflect.ValueOf(&im).Elem()
	next = d.decodeValue(buf, next, imV)
	if v.Kind() == reflect.Complex64 || v.Kind() == reflect.Complex128 {
		v.SetComplex(complex(re, im))
	}
	return next
}

func (d *Decoder) decodeTypedArray(buf []byte, off int, elemKind reflect.Kind, width int, v reflect.Value) int {
	maj, arg, next, ok := readHead(buf, off)
	if !ok || maj != majBytes {
		d.ctx.Fail(wire.InvalidBody, off, "malformed typed array payload")
		return off
	}
	end := next + int(arg)
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, next, "truncated typed array")
		return end
	}
	count := int(arg) / width
	if v.Kind() != reflect.Slice {
		return end
	}
	ensureLen(v, count)
	for i := 0; i < count; i++ {
		raw := buf[next+i*width : next+(i+1)*width]
		elem := v.Index(i)
		switch elemKind {
		case reflect.Float32:
			elem.SetFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw))))
		case reflect.Float64:
			elem.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(raw)))
		default:
			setFixedLE(elem, raw, elemKind, width)
		}
	}
	return end
}

func setFixedLE(elem reflect.Value, raw []byte, kind reflect.Kind, width int) {
	var u uint64
	switch width {
	case 1:
		u = uint64(raw[0])
	case 2:
		u = uint64(binary.LittleEndian.Uint16(raw))
	case 4:
		u = uint64(binary.LittleEndian.Uint32(raw))
	default:
		u = binary.LittleEndian.Uint64(raw)
	}
	switch kind {
	case reflect.Int8:
		elem.SetInt(int64(int8(u)))
	case reflect.Int16:
		elem.SetInt(int64(int16(u)))
	case reflect.Int32, reflect.Int:
		elem.SetInt(int64(int32(u)))
	case reflect.Int64:
		elem.SetInt(int64(u))
	default:
		elem.SetUint(u)
	}
}

func (d *Decoder) decodeArray(buf []byte, off int, count int, v reflect.Value) int {
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

func (d *Decoder) decodeMap(buf []byte, off int, count int, v reflect.Value) int {
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

// decodeMapIntoOrderedMap decodes a text-keyed CBOR map into any
// OrderedMap[K, V] whose pointer implements wire.OrderedMapWriter,
// in wire order, which becomes the map's insertion order.
func (d *Decoder) decodeMapIntoOrderedMap(buf []byte, off int, count int, w wire.OrderedMapWriter) int {
	w.MapInit()
	pos := off
	for i := 0; i < count; i++ {
		maj, arg, next, ok := readHead(buf, pos)
		if !ok || maj != majText {
			d.ctx.Fail(wire.InvalidBody, pos, "OrderedMap decode requires a text-keyed map")
			return pos
		}
		keyEnd := next + int(arg)
		if keyEnd > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated key")
			return keyEnd
		}
		key := string(buf[next:keyEnd])
		pos = keyEnd

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

func (d *Decoder) decodeMapIntoStruct(buf []byte, off int, count int, v reflect.Value) int {
	desc, err := schema.CompileCached(v.Type())
	if err != nil {
		d.ctx.Fail(wire.InvalidBody, off, err.Error())
		return off
	}
	pos := off
	for i := 0; i < count; i++ {
		maj, arg, next, ok := readHead(buf, pos)
		if !ok || maj != majText {
			d.ctx.Fail(wire.InvalidBody, pos, "expected text string map key")
			return pos
		}
		keyEnd := next + int(arg)
		if keyEnd > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated key")
			return keyEnd
		}
		key := string(buf[next:keyEnd])
		pos = keyEnd

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
		f := &desc.Fields[fi]
		pos = d.decodeValue(buf, pos, f.Get(v))
		if d.ctx.Failed() {
			return pos
		}
	}
	return pos
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

func setUint(v reflect.Value, n uint64) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(n)
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(n))
		return true
	default:
		return false
	}
}

func setInt(v reflect.Value, n int64) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(n)
		return true
	default:
		return false
	}
}

func setFloat(v reflect.Value, f float64) bool {
	if v.Kind() != reflect.Float32 && v.Kind() != reflect.Float64 {
		return false
	}
	v.SetFloat(f)
	return true
}

func setString(v reflect.Value, s string) bool {
	if v.Kind() != reflect.String {
		return false
	}
	v.SetString(s)
	return true
}

func setBytes(v reflect.Value, b []byte) bool {
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Uint8 {
		return false
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	v.SetBytes(cp)
	return true
}

// skipValue advances past exactly one CBOR value, for unknown-key handling
// and interface{} targets.
func (d *Decoder) skipValue(buf []byte, off int) (int, error) {
	if !d.ctx.Enter(off) {
		return off, d.ctx.Err()
	}
	defer d.ctx.Exit()

	maj, arg, next, ok := readHead(buf, off)
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
		return off, d.ctx.Err()
	}
	switch maj {
	case majUnsigned, majNegative:
		return next, nil
	case majBytes, majText:
		end := next + int(arg)
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, next, "truncated string")
			return end, d.ctx.Err()
		}
		return end, nil
	case majArray:
		pos := next
		for i := uint64(0); i < arg; i++ {
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos, err
			}
		}
		return pos, nil
	case majMap:
		pos := next
		for i := uint64(0); i < arg*2; i++ {
			var err error
			pos, err = d.skipValue(buf, pos)
			if err != nil {
				return pos, err
			}
		}
		return pos, nil
	case majTag:
		return d.skipValue(buf, next)
	case majSimple:
		switch arg {
		case simpleF16:
			return next + 2, nil
		case simpleF32:
			return next + 4, nil
		case simpleF64:
			return next + 8, nil
		default:
			return next, nil
		}
	default:
		d.ctx.Fail(wire.InvalidHeader, off, "unsupported major type")
		return next, d.ctx.Err()
	}
}
