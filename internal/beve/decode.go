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
	"math"
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Decoder reads BEVE bytes into Go values via reflection, sharing the
// unknown-key and recursion-depth rules every codec enforces identically
//.
type Decoder struct {
	Options wire.ReadOptions
	ctx     wire.Context
}

// Decode reads one value from buf[off:] into v (which must be
// addressable/settable) and returns the offset just past it.
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
		if off >= len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
			return off
		}
		if major(buf[off]) == majNullBool && !boolFlag(buf[off]) {
			v.Set(reflect.Zero(v.Type()))
			return off + 1
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface {
		// No static type to decode into; skip and report the wire kind only.
		next, _, err := skipValue(buf, off, &d.ctx)
		if err != nil {
			return off
		}
		return next
	}

	if off >= len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
		return off
	}

	if v.Kind() == reflect.Struct && v.Type() == timeType {
		var s string
		next := d.decodeString(buf, off, reflect.ValueOf(&s).Elem())
		if d.ctx.Failed() {
			return next
		}
		t, err := parseTimestamp(s)
		if err != nil {
			d.ctx.Fail(wire.ParseError, off, "invalid timestamp: "+err.Error())
			return next
		}
		v.Set(reflect.ValueOf(t))
		return next
	}

	tag := buf[off]

	// A delimiter is a bare separator byte between top-level documents
	// (NDJSON-style streaming); it never carries a value of its own, so a
	// decode that lands on one skips past it and re-reads the tag that
	// follows.
	for major(tag) == majExtension && extSubID(tag) == extDelimiter {
		off++
		if off >= len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, off, "truncated value after delimiter")
			return off
		}
		tag = buf[off]
	}

	switch major(tag) {
	case majNullBool:
		return d.decodeNullBool(buf, off, tag, v)
	case majNumber:
		return d.decodeNumber(buf, off, tag, v)
	case majString:
		return d.decodeString(buf, off, v)
	case majObject:
		return d.decodeObject(buf, off, tag, v)
	case majTypedArray:
		return d.decodeTypedArray(buf, off, tag, v)
	case majGenericArray:
		return d.decodeGenericArray(buf, off, v)
	case majExtension:
		return d.decodeExtension(buf, off, tag, v)
	default:
		d.ctx.Fail(wire.InvalidBody, off, "value kind does not match Go target type "+v.Type().String())
		return off
	}
}

// decodeExtension dispatches on the sub-extension id (bits 3..7 of tag) of
// a majExtension value. extDelimiter never reaches here: decodeValue skips
// it before this point.
func (d *Decoder) decodeExtension(buf []byte, off int, tag byte, v reflect.Value) int {
	pos := off + 1
	switch extSubID(tag) {
	case extVariant:
		_, w, ok := readCompressedInt(buf[pos:])
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated variant alternative index")
			return pos
		}
		pos += w
		// The alternative index has no local registry to resolve against
		// (see polyglot.DecodeVariant); v already carries the concrete type
		// the caller wants, so the inner value decodes straight into it.
		return d.decodeValue(buf, pos, v)

	case extMatrix:
		return d.decodeMatrix(buf, pos, v)

	case extComplex:
		return d.decodeComplex(buf, pos, v)

	default:
		d.ctx.Fail(wire.InvalidBody, off, "unknown extension sub-id")
		return pos
	}
}

// decodeComplex reads a complex-extension value (header byte, then one
// pair of same-width floats) starting right after the extension tag byte.
// Complex arrays (header bit 0 set) are not a Go target this decodes into
// directly, matching internal/cbor's scalar-only complex support.
func (d *Decoder) decodeComplex(buf []byte, off int, v reflect.Value) int {
	if off >= len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated complex header")
		return off
	}
	header := buf[off]
	off++
	if header&0x1 != 0 {
		d.ctx.Fail(wire.InvalidBody, off, "complex array extension is not a supported decode target")
		return off
	}
	width := byteCounts[countIdx(header)]
	end := off + 2*width
	if end < off || end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated complex payload")
		return end
	}
	re := decodeFloatBits(buf[off:off+width], width)
	im := decodeFloatBits(buf[off+width:end], width)
	if v.Kind() != reflect.Complex64 && v.Kind() != reflect.Complex128 {
		d.ctx.Fail(wire.GetWrongType, off, "expected complex target")
		return end
	}
	v.SetComplex(complex(re, im))
	return end
}

// decodeMatrix reads a matrix-extension value (header byte, extents
// vector, then the flattened data array) into a polyglot.Matrix[T]
// target, identified structurally by its Rows/Cols/RowMajor/Data fields.
func (d *Decoder) decodeMatrix(buf []byte, off int, v reflect.Value) int {
	if off >= len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated matrix header")
		return off
	}
	rowMajor := buf[off]&0x1 != 0
	off++

	var extents []int64
	off = d.decodeValue(buf, off, reflect.ValueOf(&extents).Elem())
	if d.ctx.Failed() {
		return off
	}
	if len(extents) != 2 {
		d.ctx.Fail(wire.InvalidBody, off, "expected a 2-element matrix extents vector")
		return off
	}

	rowsField, colsField := v.FieldByName("Rows"), v.FieldByName("Cols")
	rowMajorField, dataField := v.FieldByName("RowMajor"), v.FieldByName("Data")
	if !rowsField.IsValid() || !colsField.IsValid() || !rowMajorField.IsValid() || !dataField.IsValid() {
		d.ctx.Fail(wire.GetWrongType, off, "expected Matrix target")
		next, _, _ := skipValue(buf, off, &d.ctx)
		return next
	}
	rowsField.SetInt(extents[0])
	colsField.SetInt(extents[1])
	rowMajorField.SetBool(rowMajor)
	return d.decodeValue(buf, off, dataField)
}

func (d *Decoder) decodeNullBool(buf []byte, off int, tag byte, v reflect.Value) int {
	if !boolFlag(tag) {
		v.Set(reflect.Zero(v.Type()))
		return off + 1
	}
	if v.Kind() != reflect.Bool {
		d.ctx.Fail(wire.GetWrongType, off, "expected bool target")
		return off + 1
	}
	v.SetBool(boolValue(tag))
	return off + 1
}

func (d *Decoder) decodeNumber(buf []byte, off int, tag byte, v reflect.Value) int {
	width := byteCounts[countIdx(tag)]
	start := off + 1
	end := start + width
	if end > len(buf) {
		d.ctx.Fail(wire.UnexpectedEnd, start, "truncated number")
		return end
	}
	raw := buf[start:end]

	switch sub2(tag) {
	case numFloat:
		f := decodeFloatBits(raw, width)
		if !setFloat(v, f) {
			d.ctx.Fail(wire.GetWrongType, off, "expected float target")
		}
	case numSigned:
		n := decodeSignedBits(raw, width)
		if !setInt(v, n) {
			d.ctx.Fail(wire.GetWrongType, off, "expected integer target")
		}
	case numUint:
		n := decodeUnsignedBits(raw, width)
		if !setUint(v, n) {
			d.ctx.Fail(wire.GetWrongType, off, "expected unsigned integer target")
		}
	default:
		d.ctx.Fail(wire.InvalidHeader, off, "invalid number sub-type")
	}
	return end
}

func (d *Decoder) decodeString(buf []byte, off int, v reflect.Value) int {
	end, err := skipLengthPrefixed(buf, off+1, &d.ctx)
	if err != nil {
		return end
	}
	n, w, _ := readCompressedInt(buf[off+1:])
	start := off + 1 + w
	s := string(buf[start : start+int(n)])
	if v.Kind() != reflect.String {
		d.ctx.Fail(wire.GetWrongType, off, "expected string target")
		return end
	}
	v.SetString(s)
	return end
}

func (d *Decoder) decodeObject(buf []byte, off int, tag byte, v reflect.Value) int {
	count, w, ok := readCompressedInt(buf[off+1:])
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off+1, "truncated object count")
		return off + 1
	}
	pos := off + 1 + w
	keyKind := sub2(tag)

	if v.Kind() == reflect.Struct && v.CanAddr() {
		if w, ok := v.Addr().Interface().(wire.OrderedMapWriter); ok {
			return d.decodeObjectIntoOrderedMap(buf, pos, int(count), keyKind, w)
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return d.decodeObjectIntoStruct(buf, pos, int(count), keyKind, v)
	case reflect.Map:
		return d.decodeObjectIntoMap(buf, pos, int(count), keyKind, v)
	default:
		d.ctx.Fail(wire.GetWrongType, off, "expected struct or map target for object")
		// still must skip the whole thing to keep the offset consistent
		next := pos
		for i := 0; i < int(count); i++ {
			var err error
			next, err = d.skipKey(buf, next, keyKind)
			if err != nil {
				return next
			}
			next, _, err = skipValue(buf, next, &d.ctx)
			if err != nil {
				return next
			}
		}
		return next
	}
}

func (d *Decoder) skipKey(buf []byte, off int, keyKind byte) (int, error) {
	if keyKind == keyString {
		return skipLengthPrefixed(buf, off, &d.ctx)
	}
	_, w, ok := readCompressedInt(buf[off:])
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off, "truncated key")
		return off, d.ctx.Err()
	}
	return off + w, nil
}

func (d *Decoder) decodeObjectIntoStruct(buf []byte, pos, count int, keyKind byte, v reflect.Value) int {
	desc, err := schema.CompileCached(v.Type())
	if err != nil {
		d.ctx.Fail(wire.InvalidBody, pos, err.Error())
		return pos
	}
	for i := 0; i < count; i++ {
		if keyKind != keyString {
			d.ctx.Fail(wire.GetWrongType, pos, "struct target requires string-keyed object")
			return pos
		}
		n, w, ok := readCompressedInt(buf[pos:])
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated key")
			return pos
		}
		keyStart := pos + w
		key := string(buf[keyStart : keyStart+int(n)])
		valueOff := keyStart + int(n)

		fi, found := desc.Lookup(key)
		if !found {
			if d.Options.ErrorOnUnknownKeys {
				d.ctx.Fail(wire.UnknownKey, valueOff, "unknown key "+key)
				return valueOff
			}
			next, _, err := skipValue(buf, valueOff, &d.ctx)
			if err != nil {
				return next
			}
			pos = next
			continue
		}
		f := &desc.Fields[fi]
		pos = d.decodeValue(buf, valueOff, f.Get(v))
		if d.ctx.Failed() {
			return pos
		}
	}
	return pos
}

// decodeObjectIntoOrderedMap decodes a string-keyed object into any
// OrderedMap[K, V] whose pointer implements wire.OrderedMapWriter,
// preserving insertion order (members decode in wire
// order, which becomes the map's insertion order).
func (d *Decoder) decodeObjectIntoOrderedMap(buf []byte, pos, count int, keyKind byte, w wire.OrderedMapWriter) int {
	w.MapInit()
	for i := 0; i < count; i++ {
		if keyKind != keyString {
			d.ctx.Fail(wire.GetWrongType, pos, "OrderedMap decode requires a string-keyed object")
			return pos
		}
		n, wid, ok := readCompressedInt(buf[pos:])
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated key")
			return pos
		}
		keyStart := pos + wid
		key := string(buf[keyStart : keyStart+int(n)])
		valueOff := keyStart + int(n)

		valuePtr := w.MapNewValue()
		elem := reflect.ValueOf(valuePtr).Elem()
		pos = d.decodeValue(buf, valueOff, elem)
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

func (d *Decoder) decodeObjectIntoMap(buf []byte, pos, count int, keyKind byte, v reflect.Value) int {
	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(v.Type(), count))
	}
	elemType := v.Type().Elem()
	keyType := v.Type().Key()

	for i := 0; i < count; i++ {
		var keyVal reflect.Value
		switch keyKind {
		case keyString:
			n, w, ok := readCompressedInt(buf[pos:])
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated key")
				return pos
			}
			start := pos + w
			s := string(buf[start : start+int(n)])
			pos = start + int(n)
			if keyType.Kind() != reflect.String {
				d.ctx.Fail(wire.GetWrongType, pos, "expected string map key")
				return pos
			}
			keyVal = reflect.New(keyType).Elem()
			keyVal.SetString(s)
		case keySigned:
			raw, w, ok := readCompressedInt(buf[pos:])
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated key")
				return pos
			}
			pos += w
			keyVal = reflect.New(keyType).Elem()
			keyVal.SetInt(zigzagDecode(raw))
		case keyUint:
			raw, w, ok := readCompressedInt(buf[pos:])
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated key")
				return pos
			}
			pos += w
			keyVal = reflect.New(keyType).Elem()
			keyVal.SetUint(raw)
		}

		elemVal := reflect.New(elemType).Elem()
		pos = d.decodeValue(buf, pos, elemVal)
		if d.ctx.Failed() {
			return pos
		}
		v.SetMapIndex(keyVal, elemVal)
	}
	return pos
}

func (d *Decoder) decodeTypedArray(buf []byte, off int, tag byte, v reflect.Value) int {
	count, w, ok := readCompressedInt(buf[off+1:])
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off+1, "truncated array count")
		return off + 1
	}
	pos := off + 1 + w
	numType := sub2(tag)
	idx := countIdx(tag)

	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		d.ctx.Fail(wire.GetWrongType, off, "expected slice/array target for typed array")
		if numType != numOther {
			return pos + byteCounts[idx]*int(count)
		}
		return pos
	}

	if numType == numUint && idx == 0 && v.Type().Elem().Kind() == reflect.Uint8 {
		end := pos + int(count)
		if end > len(buf) {
			d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated byte array")
			return end
		}
		setByteSlice(v, buf[pos:end])
		return end
	}

	if numType != numOther {
		width := byteCounts[idx]
		ensureLen(v, int(count))
		for i := 0; i < int(count); i++ {
			start := pos + i*width
			end := start + width
			if end > len(buf) {
				d.ctx.Fail(wire.UnexpectedEnd, start, "truncated numeric array element")
				return end
			}
			raw := buf[start:end]
			elem := v.Index(i)
			switch numType {
			case numFloat:
				setFloat(elem, decodeFloatBits(raw, width))
			case numSigned:
				setInt(elem, decodeSignedBits(raw, width))
			default:
				setUint(elem, decodeUnsignedBits(raw, width))
			}
		}
		return pos + int(count)*width
	}

	switch idx {
	case stringArrayCountIdx:
		ensureLen(v, int(count))
		for i := 0; i < int(count); i++ {
			n, w, ok := readCompressedInt(buf[pos:])
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, pos, "truncated string array element")
				return pos
			}
			start := pos + w
			end := start + int(n)
			if end > len(buf) {
				d.ctx.Fail(wire.UnexpectedEnd, start, "string array element runs past end of buffer")
				return end
			}
			v.Index(i).SetString(string(buf[start:end]))
			pos = end
		}
		return pos
	default:
		d.ctx.Fail(wire.SyntaxError, pos, "boolean typed array is reserved and not implemented")
		return pos
	}
}

func (d *Decoder) decodeGenericArray(buf []byte, off int, v reflect.Value) int {
	count, w, ok := readCompressedInt(buf[off+1:])
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, off+1, "truncated array count")
		return off + 1
	}
	pos := off + 1 + w

	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		d.ctx.Fail(wire.GetWrongType, off, "expected slice/array target for generic array")
		for i := 0; i < int(count); i++ {
			var err error
			pos, _, err = skipValue(buf, pos, &d.ctx)
			if err != nil {
				return pos
			}
		}
		return pos
	}
	ensureLen(v, int(count))
	for i := 0; i < int(count); i++ {
		pos = d.decodeValue(buf, pos, v.Index(i))
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

func setByteSlice(v reflect.Value, data []byte) {
	if v.Kind() == reflect.Slice {
		cp := make([]byte, len(data))
		copy(cp, data)
		v.SetBytes(cp)
		return
	}
	for i := 0; i < v.Len() && i < len(data); i++ {
		v.Index(i).SetUint(uint64(data[i]))
	}
}

func setFloat(v reflect.Value, f float64) bool {
	if v.Kind() != reflect.Float32 && v.Kind() != reflect.Float64 {
		return false
	}
	v.SetFloat(f)
	return true
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

func setUint(v reflect.Value, n uint64) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(n)
		return true
	default:
		return false
	}
}

func decodeFloatBits(raw []byte, width int) float64 {
	if width == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(raw))
}

func decodeSignedBits(raw []byte, width int) int64 {
	switch width {
	case 1:
		return int64(int8(raw[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(raw)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(raw)))
	default:
		return int64(binary.LittleEndian.Uint64(raw))
	}
}

func decodeUnsignedBits(raw []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(raw[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(raw))
	case 4:
		return uint64(binary.LittleEndian.Uint32(raw))
	default:
		return binary.LittleEndian.Uint64(raw)
	}
}
