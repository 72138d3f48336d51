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

package json

import (
	"reflect"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Decoder reads RFC 8259 JSON (plus §4.3.1's extensions) from a
// wire.Source into a Go value via reflection.
type Decoder struct {
	Options wire.ReadOptions
	ctx     wire.Context
}

// bufAccessor is satisfied by wire.SliceSource; Decode uses it only to
// capture raw byte spans for RawMessage passthrough fields.
type bufAccessor interface {
	Buf() []byte
}

// Decode reads exactly one JSON value from src into v.
func (d *Decoder) Decode(src wire.Source, v reflect.Value) error {
	if d.Options.MaxDepth != 0 {
		d.ctx.MaxDepth = d.Options.MaxDepth
	}
	d.skipSpace(src)
	d.decodeValue(src, v)
	if d.ctx.Failed() {
		return d.ctx.Err()
	}
	if !d.Options.PartialRead {
		d.skipSpace(src)
		if !src.EOF() && !d.Options.NDJSON {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "trailing data after top-level value")
			return d.ctx.Err()
		}
	}
	return nil
}

func (d *Decoder) peek(src wire.Source) (byte, bool) {
	p := src.Peek(1)
	if len(p) == 0 {
		return 0, false
	}
	return p[0], true
}

func (d *Decoder) skipSpace(src wire.Source) {
	for {
		b, ok := d.peek(src)
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			src.Advance(1)
			continue
		case '/':
			if d.Options.Comments && d.skipComment(src) {
				continue
			}
		}
		return
	}
}

func (d *Decoder) skipComment(src wire.Source) bool {
	p := src.Peek(2)
	if len(p) < 2 {
		return false
	}
	switch {
	case p[1] == '/':
		src.Advance(2)
		for {
			b, ok := d.peek(src)
			if !ok || b == '\n' {
				return true
			}
			src.Advance(1)
		}
	case p[1] == '*':
		src.Advance(2)
		for {
			p := src.Peek(2)
			if len(p) == 0 {
				return true
			}
			if p[0] == '*' && len(p) > 1 && p[1] == '/' {
				src.Advance(2)
				return true
			}
			src.Advance(1)
		}
	default:
		return false
	}
}

func (d *Decoder) decodeValue(src wire.Source, v reflect.Value) {
	if d.ctx.Failed() {
		return
	}
	if !d.ctx.Enter(src.Pos()) {
		return
	}
	defer d.ctx.Exit()
	d.skipSpace(src)

	for v.Kind() == reflect.Ptr {
		b, ok := d.peek(src)
		if ok && b == 'n' {
			d.expectLiteral(src, "null")
			v.Set(reflect.Zero(v.Type()))
			return
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface {
		_ = d.skipValue(src)
		return
	}

	if rawJSONType != nil && v.IsValid() && v.Type() == rawJSONType {
		raw, ok := d.captureRaw(src)
		if !ok {
			d.ctx.Fail(wire.ParseError, src.Pos(), "raw passthrough requires a buffered source")
			return
		}
		v.Set(reflect.ValueOf(RawMessage(append([]byte(nil), raw...))))
		return
	}

	b, ok := d.peek(src)
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unexpected end of input")
		return
	}

	switch {
	case b == 'n':
		d.expectLiteral(src, "null")
		if v.IsValid() && v.CanSet() {
			v.Set(reflect.Zero(v.Type()))
		}
	case b == 't':
		d.expectLiteral(src, "true")
		d.setBool(v, true)
	case b == 'f':
		d.expectLiteral(src, "false")
		d.setBool(v, false)
	case b == '"':
		s := d.decodeString(src)
		d.setString(v, s)
	case b == '[':
		d.decodeArray(src, v)
	case b == '{':
		d.decodeObject(src, v)
	case b == '-' || (b >= '0' && b <= '9'):
		d.decodeNumber(src, v)
	default:
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "unexpected character")
	}
}

func (d *Decoder) captureRaw(src wire.Source) ([]byte, bool) {
	ba, ok := src.(bufAccessor)
	if !ok {
		return nil, false
	}
	start := src.Pos()
	if !d.skipValue(src) {
		return nil, false
	}
	return ba.Buf()[start:src.Pos()], true
}

// skipValue advances src past exactly one JSON value without decoding it,
// for unknown-key handling and RawMessage capture.
func (d *Decoder) skipValue(src wire.Source) bool {
	d.skipSpace(src)
	b, ok := d.peek(src)
	if !ok {
		d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unexpected end of input")
		return false
	}
	switch {
	case b == 'n':
		d.expectLiteral(src, "null")
	case b == 't':
		d.expectLiteral(src, "true")
	case b == 'f':
		d.expectLiteral(src, "false")
	case b == '"':
		d.decodeString(src)
	case b == '[':
		src.Advance(1)
		d.skipSpace(src)
		if pb, ok := d.peek(src); ok && pb == ']' {
			src.Advance(1)
			return !d.ctx.Failed()
		}
		for {
			if !d.skipValue(src) {
				return false
			}
			d.skipSpace(src)
			pb, ok := d.peek(src)
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated array")
				return false
			}
			if pb == ',' {
				src.Advance(1)
				continue
			}
			if pb == ']' {
				src.Advance(1)
				return true
			}
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ',' or ']'")
			return false
		}
	case b == '{':
		src.Advance(1)
		d.skipSpace(src)
		if pb, ok := d.peek(src); ok && pb == '}' {
			src.Advance(1)
			return !d.ctx.Failed()
		}
		for {
			d.skipSpace(src)
			if pb, ok := d.peek(src); !ok || pb != '"' {
				d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected string key")
				return false
			}
			d.decodeString(src)
			d.skipSpace(src)
			if pb, ok := d.peek(src); !ok || pb != ':' {
				d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ':'")
				return false
			}
			src.Advance(1)
			if !d.skipValue(src) {
				return false
			}
			d.skipSpace(src)
			pb, ok := d.peek(src)
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated object")
				return false
			}
			if pb == ',' {
				src.Advance(1)
				continue
			}
			if pb == '}' {
				src.Advance(1)
				return true
			}
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ',' or '}'")
			return false
		}
	case b == '-' || (b >= '0' && b <= '9'):
		d.scanNumber(src)
	default:
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "unexpected character")
		return false
	}
	return !d.ctx.Failed()
}

func (d *Decoder) expectLiteral(src wire.Source, lit string) {
	p := src.Peek(len(lit))
	if string(p) != lit {
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "invalid literal, expected "+lit)
		return
	}
	src.Advance(len(lit))
}

func (d *Decoder) setBool(v reflect.Value, b bool) {
	if !v.IsValid() || !v.CanSet() {
		return
	}
	if v.Kind() != reflect.Bool {
		d.ctx.Fail(wire.GetWrongType, 0, "expected bool target")
		return
	}
	v.SetBool(b)
}

func (d *Decoder) setString(v reflect.Value, s string) {
	if !v.IsValid() || !v.CanSet() {
		return
	}
	if timeType != nil && v.Type() == timeType {
		t, err := parseTimestamp(s)
		if err != nil {
			d.ctx.Fail(wire.ParseError, 0, "invalid timestamp: "+err.Error())
			return
		}
		v.Set(reflect.ValueOf(t))
		return
	}
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		v.SetBytes([]byte(s))
		return
	}
	if v.Kind() != reflect.String {
		d.ctx.Fail(wire.GetWrongType, 0, "expected string target")
		return
	}
	v.SetString(s)
}

// decodeString scans a quoted JSON string, applying all RFC 8259 escapes
// including \uXXXX surrogate pairs, and returns its decoded value.
func (d *Decoder) decodeString(src wire.Source) string {
	if b, ok := d.peek(src); !ok || b != '"' {
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected '\"'")
		return ""
	}
	src.Advance(1)

	var out []byte
	for {
		b, ok := d.peek(src)
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated string")
			return ""
		}
		if b == '"' {
			src.Advance(1)
			return string(out)
		}
		if b == '\\' {
			src.Advance(1)
			eb, ok := d.peek(src)
			if !ok {
				d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated escape")
				return ""
			}
			src.Advance(1)
			switch eb {
			case '"', '\\', '/':
				out = append(out, eb)
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				r := d.decodeHex4(src)
				if utf16.IsSurrogate(rune(r)) {
					p := src.Peek(6)
					if len(p) == 6 && p[0] == '\\' && p[1] == 'u' {
						src.Advance(2)
						r2 := d.decodeHex4(src)
						decoded := utf16.DecodeRune(rune(r), rune(r2))
						var buf [utf8.UTFMax]byte
						n := utf8.EncodeRune(buf[:], decoded)
						out = append(out, buf[:n]...)
						break
					}
				}
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], rune(r))
				out = append(out, buf[:n]...)
			default:
				d.ctx.Fail(wire.SyntaxError, src.Pos(), "invalid escape character")
				return ""
			}
			continue
		}
		if b < 0x20 && !d.Options.AllowInvalidUTF8 {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "control character in string")
			return ""
		}
		out = append(out, b)
		src.Advance(1)
	}
}

func (d *Decoder) decodeHex4(src wire.Source) uint16 {
	p := src.Peek(4)
	if len(p) < 4 {
		d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "truncated \\u escape")
		return 0
	}
	n, err := strconv.ParseUint(string(p), 16, 16)
	if err != nil {
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "invalid \\u escape")
		return 0
	}
	src.Advance(4)
	return uint16(n)
}

// scanNumber validates and consumes a number per RFC 8259's strict
// grammar (no leading zeros, a digit required after '.', a digit required
// after an exponent sign) and returns its literal text.
func (d *Decoder) scanNumber(src wire.Source) string {
	start := src.Pos()
	var lit []byte
	b, _ := d.peek(src)
	if b == '-' {
		lit = append(lit, b)
		src.Advance(1)
	}
	b, ok := d.peek(src)
	if !ok || b < '0' || b > '9' {
		d.ctx.Fail(wire.SyntaxError, start, "invalid number")
		return ""
	}
	if b == '0' {
		lit = append(lit, b)
		src.Advance(1)
	} else {
		for {
			b, ok := d.peek(src)
			if !ok || b < '0' || b > '9' {
				break
			}
			lit = append(lit, b)
			src.Advance(1)
		}
	}
	if b, ok := d.peek(src); ok && b == '.' {
		lit = append(lit, b)
		src.Advance(1)
		b, ok := d.peek(src)
		if !ok || b < '0' || b > '9' {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected digit after decimal point")
			return ""
		}
		for {
			b, ok := d.peek(src)
			if !ok || b < '0' || b > '9' {
				break
			}
			lit = append(lit, b)
			src.Advance(1)
		}
	}
	if b, ok := d.peek(src); ok && (b == 'e' || b == 'E') {
		lit = append(lit, b)
		src.Advance(1)
		if b, ok := d.peek(src); ok && (b == '+' || b == '-') {
			lit = append(lit, b)
			src.Advance(1)
		}
		b, ok := d.peek(src)
		if !ok || b < '0' || b > '9' {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected digit in exponent")
			return ""
		}
		for {
			b, ok := d.peek(src)
			if !ok || b < '0' || b > '9' {
				break
			}
			lit = append(lit, b)
			src.Advance(1)
		}
	}
	return string(lit)
}

func (d *Decoder) decodeNumber(src wire.Source, v reflect.Value) {
	lit := d.scanNumber(src)
	if d.ctx.Failed() {
		return
	}
	if !v.IsValid() || !v.CanSet() {
		return
	}
	isFloatLit := false
	for _, c := range lit {
		if c == '.' || c == 'e' || c == 'E' {
			isFloatLit = true
			break
		}
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(lit, v.Type().Bits())
		if err != nil {
			d.ctx.Fail(wire.ParseError, src.Pos(), "invalid float literal")
			return
		}
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isFloatLit {
			d.ctx.Fail(wire.GetWrongType, src.Pos(), "fractional number for integer target")
			return
		}
		n, err := strconv.ParseInt(lit, 10, v.Type().Bits())
		if err != nil {
			d.ctx.Fail(wire.ParseError, src.Pos(), "integer literal out of range")
			return
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isFloatLit {
			d.ctx.Fail(wire.GetWrongType, src.Pos(), "fractional number for integer target")
			return
		}
		n, err := strconv.ParseUint(lit, 10, v.Type().Bits())
		if err != nil {
			d.ctx.Fail(wire.ParseError, src.Pos(), "integer literal out of range")
			return
		}
		v.SetUint(n)
	default:
		d.ctx.Fail(wire.GetWrongType, src.Pos(), "expected numeric target")
	}
}

func (d *Decoder) decodeArray(src wire.Source, v reflect.Value) {
	src.Advance(1)
	d.skipSpace(src)
	if b, ok := d.peek(src); ok && b == ']' {
		src.Advance(1)
		if v.IsValid() && v.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
		}
		return
	}

	canDecode := v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
	var elems []reflect.Value
	for {
		var ev reflect.Value
		if canDecode {
			if v.Kind() == reflect.Slice {
				ev = reflect.New(v.Type().Elem()).Elem()
			}
		}
		if canDecode && v.Kind() == reflect.Array {
			if len(elems) < v.Len() {
				ev = v.Index(len(elems))
			} else {
				ev = reflect.New(v.Type().Elem()).Elem() // overflow slot, discarded
			}
		}
		d.decodeValue(src, ev)
		if d.ctx.Failed() {
			return
		}
		if canDecode && v.Kind() == reflect.Slice {
			elems = append(elems, ev)
		} else {
			elems = append(elems, reflect.Value{})
		}
		d.skipSpace(src)
		b, ok := d.peek(src)
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated array")
			return
		}
		if b == ',' {
			src.Advance(1)
			d.skipSpace(src)
			continue
		}
		if b == ']' {
			src.Advance(1)
			break
		}
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ',' or ']'")
		return
	}

	if canDecode && v.Kind() == reflect.Slice {
		out := reflect.MakeSlice(v.Type(), len(elems), len(elems))
		for i, ev := range elems {
			out.Index(i).Set(ev)
		}
		v.Set(out)
	}
}

func (d *Decoder) decodeObject(src wire.Source, v reflect.Value) {
	src.Advance(1)
	d.skipSpace(src)

	var desc *schema.Descriptor
	var mapWriter wire.OrderedMapWriter
	if v.IsValid() && v.Kind() == reflect.Struct && v.CanAddr() {
		if w, ok := v.Addr().Interface().(wire.OrderedMapWriter); ok {
			mapWriter = w
			mapWriter.MapInit()
		}
	}
	isOrderedMap := mapWriter != nil
	isStruct := !isOrderedMap && v.IsValid() && v.Kind() == reflect.Struct
	isMap := v.IsValid() && v.Kind() == reflect.Map
	if isStruct {
		var err error
		desc, err = schema.CompileCached(v.Type())
		if err != nil {
			d.ctx.Fail(wire.InvalidBody, src.Pos(), err.Error())
			return
		}
	}
	if isMap && v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}

	if b, ok := d.peek(src); ok && b == '}' {
		src.Advance(1)
		return
	}

	for {
		d.skipSpace(src)
		if b, ok := d.peek(src); !ok || b != '"' {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected string key")
			return
		}
		key := d.decodeString(src)
		if d.ctx.Failed() {
			return
		}
		d.skipSpace(src)
		if b, ok := d.peek(src); !ok || b != ':' {
			d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ':'")
			return
		}
		src.Advance(1)

		switch {
		case isOrderedMap:
			valuePtr := mapWriter.MapNewValue()
			elem := reflect.ValueOf(valuePtr).Elem()
			d.decodeValue(src, elem)
			if d.ctx.Failed() {
				return
			}
			if err := mapWriter.MapInsertString(key, valuePtr); err != nil {
				d.ctx.Fail(wire.InvalidBody, src.Pos(), err.Error())
				return
			}
		case isStruct:
			fi, found := desc.Lookup(key)
			if !found {
				if d.Options.ErrorOnUnknownKeys {
					d.ctx.Fail(wire.UnknownKey, src.Pos(), "unknown key "+key)
					return
				}
				if !d.skipValue(src) {
					return
				}
			} else {
				f := &desc.Fields[fi]
				d.decodeValue(src, f.Get(v))
				if d.ctx.Failed() {
					return
				}
			}
		case isMap:
			elem := reflect.New(v.Type().Elem()).Elem()
			d.decodeValue(src, elem)
			if d.ctx.Failed() {
				return
			}
			keyVal := reflect.New(v.Type().Key()).Elem()
			keyVal.SetString(key)
			v.SetMapIndex(keyVal, elem)
		default:
			if !d.skipValue(src) {
				return
			}
		}

		d.skipSpace(src)
		b, ok := d.peek(src)
		if !ok {
			d.ctx.Fail(wire.UnexpectedEnd, src.Pos(), "unterminated object")
			return
		}
		if b == ',' {
			src.Advance(1)
			continue
		}
		if b == '}' {
			src.Advance(1)
			return
		}
		d.ctx.Fail(wire.SyntaxError, src.Pos(), "expected ',' or '}'")
		return
	}
}
