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

package polyglot

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/polyglot-codec/polyglot/internal/beve"
)

// LazyDocument wraps a BEVE-encoded buffer for navigation without fully
// decoding it: Field/Index walk into nested objects/arrays by reading only
// the tags and spans needed to reach the requested member. Only
// BEVE supports this: its tagged, length-prefixed layout lets a reader skip
// a value without parsing it, which JSON, CBOR's indefinite-length forms,
// and MessagePack's own encoding do not uniformly guarantee.
type LazyDocument struct {
	doc *beve.Document
}

// NewLazyDocument wraps buf for lazy navigation without copying it; buf
// must outlive the LazyDocument and every LazyView derived from it.
func NewLazyDocument(buf []byte) (*LazyDocument, error) {
	return &LazyDocument{doc: beve.NewDocument(buf)}, nil
}

// Err returns the first navigation error encountered across every View
// derived from this document, or nil.
func (d *LazyDocument) Err() error {
	if err := d.doc.Err(); err != nil {
		return wrapBeveErr(err)
	}
	return nil
}

// Root returns a LazyView over the whole document.
func (d *LazyDocument) Root() LazyView {
	return LazyView{v: d.doc.Root()}
}

// Into decodes the entire document into v, which must be a non-nil
// pointer — equivalent to Root().Decode(v), provided for symmetry with
// Unmarshal's "whole value" entry point.
func (d *LazyDocument) Into(v any) error {
	return d.Root().Decode(v)
}

// LazyView is an unmaterialized handle onto a single value within a
// LazyDocument.
type LazyView struct {
	v beve.View
}

// Kind reports the value-algebra kind of the value this view points at,
// without descending into it.
func (v LazyView) Kind() Kind { return v.v.Kind() }

// Field looks up a member of an object-kinded view by name.
func (v LazyView) Field(name string) (LazyView, bool) {
	sub, ok := v.v.Key(name)
	return LazyView{v: sub}, ok
}

// Index returns the i'th element of an array-kinded view.
func (v LazyView) Index(i int) (LazyView, bool) {
	sub, ok := v.v.Index(i)
	return LazyView{v: sub}, ok
}

// Len reports the member count of an object or array view.
func (v LazyView) Len() int { return v.v.Len() }

// Decode materializes the value this view points at into ptr, which must
// be a non-nil pointer. This lets a caller pull out one field of a large
// document without paying to decode the rest of it.
func (v LazyView) Decode(ptr any) error {
	if err := v.v.Decode(ptr); err != nil {
		return wrapBeveErr(err)
	}
	return nil
}

// Raw returns the raw BEVE-encoded bytes covering this view's value,
// without parsing them — useful for isolating a Variant member's bytes to
// hand to DecodeVariant.
func (v LazyView) Raw() []byte { return v.v.Raw() }

// Dump renders the view's internal scan/offset state for debugging —
// go-spew can see through to the unexported cursor/offset fields that
// fmt's default formatting cannot, which is the point of reaching for it
// here instead of a hand-written %+v.
func (v LazyView) Dump() string { return spew.Sdump(v.v) }

// Indexed builds an IndexedLazyView over v by fully scanning it once. Use
// this when a container will be queried many times out of key order — the
// lazy wrap-once scan degrades to a full rescan per miss in that access
// pattern.
func (v LazyView) Indexed() (IndexedLazyView, bool) {
	iv, ok := v.v.ToIndexed()
	return IndexedLazyView{iv: iv}, ok
}

// IndexedLazyView is a fully materialized member-offset table for a
// container, built by a one-time O(n) scan: afterwards positional access
// is O(1) and named access is an O(n) linear scan of the key table.
type IndexedLazyView struct {
	iv beve.IndexedView
}

// Field looks up name among the indexed members.
func (iv IndexedLazyView) Field(name string) (LazyView, bool) {
	sub, ok := iv.iv.Key(name)
	return LazyView{v: sub}, ok
}

// Index returns the i'th indexed member.
func (iv IndexedLazyView) Index(i int) (LazyView, bool) {
	sub, ok := iv.iv.Index(i)
	return LazyView{v: sub}, ok
}

// Len reports the number of indexed members.
func (iv IndexedLazyView) Len() int { return iv.iv.Len() }
