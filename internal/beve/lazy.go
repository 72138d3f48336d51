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
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/wire"
	"github.com/polyglot-codec/polyglot/internal/zc"
)

// scanState tracks how much of an object/array View's members have been
// visited by sequential Next calls, mirroring a protobuf message's
// decoder's field-cursor progression but over BEVE's self-describing tags
// instead of a schema-driven field table.
type scanState int

const (
	// scanFresh: no member has been visited yet.
	scanFresh scanState = iota
	// scanScanning: at least one member visited, not yet wrapped.
	scanScanning
	// scanExhausted: scan has wrapped back to its start once, so every
	// member has been seen. Lookups keep scanning in this state; only
	// ToIndexed builds an index.
	scanExhausted
)

// Document is the root of a lazily-navigated BEVE buffer: the raw bytes
// plus a zero-value wire.Context reused across navigation calls so errors
// accumulate using the same first-error-wins rule codecs use.
type Document struct {
	buf []byte
	ctx wire.Context
}

// NewDocument wraps buf for lazy navigation without copying it; buf must
// outlive the Document and every View/IndexedView derived from it.
func NewDocument(buf []byte) *Document {
	return &Document{buf: buf}
}

// Err returns the first navigation error encountered, or nil.
func (d *Document) Err() error {
	if e := d.ctx.Err(); e != nil {
		return e
	}
	return nil
}

// Root returns a View over the whole document, starting at offset 0.
func (d *Document) Root() View {
	return View{doc: d, tagOff: 0}
}

// View is an unmaterialized handle onto a single BEVE value: a position in
// the buffer plus enough cached scan state to support progressive,
// wrap-once member lookup for objects and arrays.
type View struct {
	doc    *Document
	tagOff int

	// The following are populated lazily by entering the container.
	opened    bool
	bodyOff   int // offset of the first member, after the count prefix
	keyKind   byte
	count     uint64
	cursor    uint64 // index of the next member the scan will visit
	cursorOff int    // byte offset of member `cursor`
	state     scanState
}

// Kind reports the wire.Kind of the value this View points at, without
// descending into it.
func (v View) Kind() wire.Kind {
	if v.tagOff >= len(v.doc.buf) {
		return wire.KindInvalid
	}
	tag := v.doc.buf[v.tagOff]
	switch major(tag) {
	case majNullBool:
		if boolFlag(tag) {
			return wire.KindBool
		}
		return wire.KindNull
	case majNumber:
		return numberKind(sub2(tag))
	case majString:
		return wire.KindString
	case majObject:
		return wire.KindStringMap
	case majTypedArray:
		if sub2(tag) == numOther && countIdx(tag) == stringArrayCountIdx {
			return wire.KindSequence
		}
		return wire.KindNumericArray
	case majGenericArray:
		return wire.KindSequence
	case majExtension:
		switch extSubID(tag) {
		case extVariant:
			return wire.KindVariant
		case extMatrix:
			return wire.KindMatrix
		case extComplex:
			return wire.KindComplex
		default:
			return wire.KindInvalid
		}
	default:
		return wire.KindInvalid
	}
}

// Bool returns the boolean payload of a majNullBool/bool-flagged tag.
func (v View) Bool() (bool, bool) {
	if v.Kind() != wire.KindBool {
		return false, false
	}
	return boolValue(v.doc.buf[v.tagOff]), true
}

// Bytes returns the zero-copy span backing a string-kinded value.
func (v View) Bytes() (zc.Span, bool) {
	if v.tagOff >= len(v.doc.buf) || major(v.doc.buf[v.tagOff]) != majString {
		return zc.Span{}, false
	}
	n, w, ok := readCompressedInt(v.doc.buf[v.tagOff+1:])
	if !ok {
		v.doc.ctx.Fail(wire.UnexpectedEnd, v.tagOff+1, "truncated string length")
		return zc.Span{}, false
	}
	start := v.tagOff + 1 + w
	return zc.NewSpan(start, start+int(n)), true
}

// open materializes the container header (member count, key kind, body
// start offset) the first time any member-oriented method is called.
func (v *View) open() bool {
	if v.opened {
		return true
	}
	if v.tagOff >= len(v.doc.buf) {
		return false
	}
	tag := v.doc.buf[v.tagOff]
	maj := major(tag)
	if maj != majObject && maj != majGenericArray && maj != majTypedArray {
		return false
	}
	off := v.tagOff + 1
	count, w, ok := readCompressedInt(v.doc.buf[off:])
	if !ok {
		v.doc.ctx.Fail(wire.UnexpectedEnd, off, "truncated container count")
		return false
	}
	off += w

	v.opened = true
	v.bodyOff = off
	v.count = count
	v.cursor = 0
	v.cursorOff = off
	v.state = scanFresh
	if maj == majObject {
		v.keyKind = sub2(tag)
	} else {
		v.keyKind = keyString // arrays are indexed positionally, never by name
	}
	return true
}

// Len reports the member count of an object or array View.
func (v *View) Len() int {
	if !v.open() {
		return 0
	}
	return int(v.count)
}

// memberKey reads the key at the current cursor position for a
// string-keyed object, returning it and the offset of its value.
func (v *View) memberKey() (zc.Span, int, bool) {
	off := v.cursorOff
	switch v.keyKind {
	case keyString:
		n, w, ok := readCompressedInt(v.doc.buf[off:])
		if !ok {
			return zc.Span{}, 0, false
		}
		start := off + w
		return zc.NewSpan(start, start+int(n)), start + int(n), true
	default:
		_, w, ok := readCompressedInt(v.doc.buf[off:])
		if !ok {
			return zc.Span{}, 0, false
		}
		return zc.Span{}, off + w, true
	}
}

// advanceCursor skips over the member at the cursor (key, if any, plus
// value) and moves the cursor to the next index, wrapping to 0 once the
// end is reached.
func (v *View) advanceCursor() bool {
	_, valueOff, ok := v.memberKey()
	if !ok {
		return false
	}
	next, _, err := skipValue(v.doc.buf, valueOff, &v.doc.ctx)
	if err != nil {
		return false
	}
	v.cursor++
	v.cursorOff = next
	if v.cursor >= v.count {
		v.cursor = 0
		v.cursorOff = v.bodyOff
		if v.state == scanScanning {
			v.state = scanExhausted
		}
	} else if v.state == scanFresh {
		v.state = scanScanning
	}
	return true
}

// Key looks up a string member by name using progressive wrap-once
// scanning from the current cursor: it walks forward from wherever
// the last lookup left off, and if it passes the starting point without a
// match it has proven the key is absent (every member has now been seen
// exactly once since the scan began).
func (v *View) Key(name string) (View, bool) {
	if !v.open() || v.keyKind != keyString || v.count == 0 {
		return View{}, false
	}
	start := v.cursor
	for i := uint64(0); i < v.count; i++ {
		key, valueOff, ok := v.memberKey()
		if !ok {
			return View{}, false
		}
		if key.String(v.doc.buf) == name {
			return View{doc: v.doc, tagOff: valueOff}, true
		}
		if !v.advanceCursor() {
			return View{}, false
		}
		if v.cursor == start {
			break
		}
	}
	return View{}, false
}

// Index returns the i'th element of an array-kinded View. Numeric typed
// arrays are computed directly (O(1), fixed-width elements); generic
// arrays and string typed arrays require scanning from the nearest known
// offset, same as Key.
func (v *View) Index(i int) (View, bool) {
	if !v.open() || uint64(i) >= v.count {
		return View{}, false
	}
	tag := v.doc.buf[v.tagOff]
	if major(tag) == majTypedArray && sub2(tag) != numOther {
		width := byteCounts[countIdx(tag)]
		off := v.bodyOff + i*width
		return View{doc: v.doc, tagOff: off}, true
	}

	if uint64(i) < v.cursor {
		v.cursor = 0
		v.cursorOff = v.bodyOff
		v.state = scanFresh
	}
	for v.cursor < uint64(i) {
		if !v.advanceCursor() {
			return View{}, false
		}
	}
	return View{doc: v.doc, tagOff: v.cursorOff}, true
}

// Decode materializes the value this View points at into ptr, which must
// be a non-nil pointer. This reuses the same reflection-driven decode path
// as a full Unmarshal, letting a caller pull out one field of a large
// document without paying to decode the rest of it.
func (v View) Decode(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		v.doc.ctx.Fail(wire.GetWrongType, v.tagOff, "Decode requires a non-nil pointer")
		return v.doc.ctx.Err()
	}
	dec := Decoder{ctx: v.doc.ctx}
	_, err := dec.Decode(v.doc.buf, v.tagOff, rv.Elem())
	v.doc.ctx = dec.ctx
	return err
}

// Raw returns the raw BEVE-encoded bytes covering this View's value,
// including its tag byte, without parsing them.
func (v View) Raw() []byte {
	ctx := v.doc.ctx
	next, _, err := skipValue(v.doc.buf, v.tagOff, &ctx)
	if err != nil {
		return nil
	}
	return v.doc.buf[v.tagOff:next]
}

// IndexedView is a fully materialized member-offset table for a container,
// built once the progressive scan in View has proven insufficient (a
// lookup sequence that revisits keys out of order repeatedly). After a
// one-time O(n) build, positional lookups (Index) are O(1); named lookups
// (Key) scan the key table linearly, O(n), as there is no hash over the
// keys.
type IndexedView struct {
	doc     *Document
	offsets []int // value offset for member i
	keys    []zc.Span
	keyKind byte
}

// ToIndexed builds an IndexedView over v by fully scanning it once. Use this
// when a container will be queried many times out of key order — the
// lazy View's wrap-once guarantee degrades to a full rescan per miss in
// that access pattern.
func (v *View) ToIndexed() (IndexedView, bool) {
	if !v.open() {
		return IndexedView{}, false
	}
	iv := IndexedView{
		doc:     v.doc,
		offsets: make([]int, 0, v.count),
		keys:    make([]zc.Span, 0, v.count),
		keyKind: v.keyKind,
	}
	off := v.bodyOff
	for i := uint64(0); i < v.count; i++ {
		var key zc.Span
		if v.keyKind == keyString {
			n, w, ok := readCompressedInt(v.doc.buf[off:])
			if !ok {
				return IndexedView{}, false
			}
			start := off + w
			key = zc.NewSpan(start, start+int(n))
			off = start + int(n)
		} else {
			_, w, ok := readCompressedInt(v.doc.buf[off:])
			if !ok {
				return IndexedView{}, false
			}
			off += w
		}
		iv.keys = append(iv.keys, key)
		iv.offsets = append(iv.offsets, off)
		next, _, err := skipValue(v.doc.buf, off, &v.doc.ctx)
		if err != nil {
			return IndexedView{}, false
		}
		off = next
	}
	return iv, true
}

// Key looks up name in the materialized index with a linear scan over the
// cached key spans; the spans are zero-copy so the comparison touches the
// original buffer directly.
func (iv IndexedView) Key(name string) (View, bool) {
	for i, k := range iv.keys {
		if k.String(iv.doc.buf) == name {
			return View{doc: iv.doc, tagOff: iv.offsets[i]}, true
		}
	}
	return View{}, false
}

// Index returns the i'th member by position in O(1).
func (iv IndexedView) Index(i int) (View, bool) {
	if i < 0 || i >= len(iv.offsets) {
		return View{}, false
	}
	return View{doc: iv.doc, tagOff: iv.offsets[i]}, true
}

// Len reports the number of indexed members.
func (iv IndexedView) Len() int { return len(iv.offsets) }
