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

// Package json implements the JSON codec of §4.3.1: RFC 8259 syntax plus
// the extensions listed there (comments on read, NDJSON framing, raw
// passthrough values, a float precision cap). encode.go and decode.go hold
// the writer/reader, time.go the ISO-8601 timestamp convention.
package json

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/polyglot-codec/polyglot/internal/schema"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Encoder writes Go values as JSON text into a wire.Sink.
type Encoder struct {
	Options wire.WriteOptions
	ctx     wire.Context
	depth   int
}

// Encode writes v into sink. A single Encoder is good for one top-level
// call, matching the rest of the codec family's context-per-call rule.
func (e *Encoder) Encode(sink wire.Sink, v reflect.Value) error {
	e.encodeValue(sink, v)
	if err := e.ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (e *Encoder) encodeValue(sink wire.Sink, v reflect.Value) {
	if e.ctx.Failed() {
		return
	}
	if !e.ctx.Enter(sink.Len()) {
		return
	}
	defer e.ctx.Exit()

	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			sink.Write([]byte("null"))
			return
		}
		v = v.Elem()
	}

	if rawJSONType != nil && v.Type() == rawJSONType {
		raw := v.Interface().(RawMessage)
		if len(raw) == 0 {
			sink.Write([]byte("null"))
		} else {
			sink.Write(raw)
		}
		return
	}

	switch v.Kind() {
	case reflect.Invalid:
		sink.Write([]byte("null"))
	case reflect.Bool:
		if e.Options.BoolsAsNumbers {
			if v.Bool() {
				sink.WriteByte('1')
			} else {
				sink.WriteByte('0')
			}
			return
		}
		if v.Bool() {
			sink.Write([]byte("true"))
		} else {
			sink.Write([]byte("false"))
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		sink.Write([]byte(strconv.FormatInt(v.Int(), 10)))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		sink.Write([]byte(strconv.FormatUint(v.Uint(), 10)))
	case reflect.Float32:
		e.encodeFloat(sink, v.Float(), 32)
	case reflect.Float64:
		e.encodeFloat(sink, v.Float(), 64)
	case reflect.String:
		writeQuotedString(sink, v.String())
	case reflect.Slice, reflect.Array:
		e.encodeSequence(sink, v)
	case reflect.Map:
		e.encodeMap(sink, v)
	case reflect.Struct:
		e.encodeStruct(sink, v)
	default:
		e.ctx.Fail(wire.InvalidBody, sink.Len(), "unsupported type "+v.Type().String())
	}
}

func (e *Encoder) encodeFloat(sink wire.Sink, f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		// RFC 8259 has no NaN/Infinity token; emit null, matching the
		// common encoding/json convention for non-finite floats.
		sink.Write([]byte("null"))
		return
	}
	if e.Options.FloatMaxWritePrecision {
		// Cap at float32 precision: the shortest digits that identify the
		// value once rounded to float32.
		bits = 32
	}
	sink.Write([]byte(strconv.FormatFloat(f, 'g', -1, bits)))
}

func (e *Encoder) newline(sink wire.Sink, depth int) {
	if !e.Options.Prettify {
		return
	}
	sink.WriteByte('\n')
	width := e.Options.IndentWidth
	if width <= 0 {
		width = 2
	}
	ch := e.Options.IndentChar
	if ch == 0 {
		ch = ' '
	}
	for i := 0; i < depth*width; i++ {
		sink.WriteByte(ch)
	}
}

func (e *Encoder) encodeSequence(sink wire.Sink, v reflect.Value) {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		writeQuotedString(sink, string(v.Bytes())) // base-less: bytes as a raw string per Non-goals (no base64 layer)
		return
	}
	sink.WriteByte('[')
	n := v.Len()
	e.depth++
	for i := 0; i < n; i++ {
		if i > 0 {
			sink.WriteByte(',')
		}
		e.newline(sink, e.depth)
		e.encodeValue(sink, v.Index(i))
		if e.ctx.Failed() {
			e.depth--
			return
		}
	}
	e.depth--
	if n > 0 {
		e.newline(sink, e.depth)
	}
	sink.WriteByte(']')
}

func (e *Encoder) encodeMap(sink wire.Sink, v reflect.Value) {
	sink.WriteByte('{')
	keys := v.MapKeys()
	e.depth++
	for i, k := range keys {
		if i > 0 {
			sink.WriteByte(',')
		}
		e.newline(sink, e.depth)
		writeQuotedString(sink, stringifyMapKey(k))
		sink.WriteByte(':')
		if e.Options.Prettify {
			sink.WriteByte(' ')
		}
		e.encodeValue(sink, v.MapIndex(k))
		if e.ctx.Failed() {
			e.depth--
			return
		}
	}
	e.depth--
	if len(keys) > 0 {
		e.newline(sink, e.depth)
	}
	sink.WriteByte('}')
}

func stringifyMapKey(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	default:
		return ""
	}
}

func (e *Encoder) encodeStruct(sink wire.Sink, v reflect.Value) {
	if timeType != nil && v.Type() == timeType {
		writeQuotedString(sink, formatTimestamp(v.Interface().(timeValue)))
		return
	}
	if r, ok := v.Interface().(wire.OrderedMapReader); ok {
		e.encodeOrderedMap(sink, r)
		return
	}

	d, err := schema.CompileCached(v.Type())
	if err != nil {
		e.ctx.Fail(wire.InvalidBody, sink.Len(), err.Error())
		return
	}

	sink.WriteByte('{')
	e.depth++
	written := 0
	for i := range d.Fields {
		f := &d.Fields[i]
		fv := f.Get(v)
		if (e.Options.SkipNullMembers || f.OmitNull) && isNullish(fv) {
			continue
		}
		if written > 0 {
			sink.WriteByte(',')
		}
		e.newline(sink, e.depth)
		writeQuotedString(sink, f.Name)
		sink.WriteByte(':')
		if e.Options.Prettify {
			sink.WriteByte(' ')
		}
		e.encodeValue(sink, fv)
		if e.ctx.Failed() {
			e.depth--
			return
		}
		written++
	}
	e.depth--
	if written > 0 {
		e.newline(sink, e.depth)
	}
	sink.WriteByte('}')
}

// encodeOrderedMap writes r's entries, in insertion order, as a JSON
// object — the generic counterpart to encodeMap for types that implement
// the OrderedMapReflector contract instead of being a reflect.Map.
func (e *Encoder) encodeOrderedMap(sink wire.Sink, r wire.OrderedMapReader) {
	n := r.MapLen()
	sink.WriteByte('{')
	e.depth++
	for i := 0; i < n; i++ {
		k, val := r.MapEntry(i)
		if i > 0 {
			sink.WriteByte(',')
		}
		e.newline(sink, e.depth)
		writeQuotedString(sink, orderedMapKeyString(k))
		sink.WriteByte(':')
		if e.Options.Prettify {
			sink.WriteByte(' ')
		}
		e.encodeValue(sink, reflect.ValueOf(val))
		if e.ctx.Failed() {
			e.depth--
			return
		}
	}
	e.depth--
	if n > 0 {
		e.newline(sink, e.depth)
	}
	sink.WriteByte('}')
}

func orderedMapKeyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

func isNullish(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}

func writeQuotedString(sink wire.Sink, s string) {
	sink.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sink.Write([]byte(`\"`))
		case '\\':
			sink.Write([]byte(`\\`))
		case '\n':
			sink.Write([]byte(`\n`))
		case '\r':
			sink.Write([]byte(`\r`))
		case '\t':
			sink.Write([]byte(`\t`))
		default:
			if r < 0x20 {
				sink.Write([]byte("\\u"))
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				sink.Write([]byte(hex))
			} else {
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], r)
				sink.Write(buf[:n])
			}
		}
	}
	sink.WriteByte('"')
}
