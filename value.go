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
	"fmt"

	"github.com/polyglot-codec/polyglot/internal/json"
	"github.com/polyglot-codec/polyglot/internal/msgpack"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Kind identifies a value-algebra kind, the cross-format intermediate
// every codec understands (bool, int, string, sequence, map, and so on).
type Kind = wire.Kind

// Variant is the marker interface implemented by every alternative of a
// closed sum type. Unmarshal does not decode a field typed as Variant (the
// decoders skip interface-typed fields); DecodeVariant tries a
// caller-supplied candidate list in order and takes the first that
// decodes (first-match-wins; there is no conflict-detection mode).
//
// isVariant is unexported so an alternative can only satisfy Variant by
// embedding VariantBase, the same closed-set discipline a sealed
// interface gives in languages that have one.
type Variant interface {
	isVariant()
}

// VariantBase is embedded by every Variant alternative to satisfy the
// interface; it carries no state.
type VariantBase struct{}

func (VariantBase) isVariant() {}

// Optional represents a value that may be present or absent, distinct
// from the zero value of T (unlike a plain *T, Optional makes "absent"
// explicit at the type level instead of overloading a nil pointer). Value
// and Valid are exported so Optional round-trips through the same generic
// struct encode/decode path as any other record, the same pragmatic
// choice made for BitSet below — there is no dedicated "nullable" wire
// shape; an absent Optional simply encodes Valid=false.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional wrapping v.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Valid: true} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the wrapped value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Valid }

// IsSome reports whether a value is present.
func (o Optional[T]) IsSome() bool { return o.Valid }

// GetOr returns the wrapped value, or fallback if absent.
func (o Optional[T]) GetOr(fallback T) T {
	if o.Valid {
		return o.Value
	}
	return fallback
}

// Matrix is a row/column-major 2-D array of T, per the value algebra's
// matrix kind. Layout defaults to row-major; RowMajor reports which is in
// effect.
type Matrix[T any] struct {
	Rows, Cols int
	RowMajor   bool
	Data       []T
}

// NewMatrix allocates a row-major Matrix with rows*cols zero-valued
// elements.
func NewMatrix[T any](rows, cols int) Matrix[T] {
	return Matrix[T]{Rows: rows, Cols: cols, RowMajor: true, Data: make([]T, rows*cols)}
}

// At returns the element at (row, col), honoring the matrix's layout.
func (m Matrix[T]) At(row, col int) T {
	return m.Data[m.index(row, col)]
}

// Set assigns the element at (row, col).
func (m Matrix[T]) Set(row, col int, v T) {
	m.Data[m.index(row, col)] = v
}

func (m Matrix[T]) index(row, col int) int {
	if m.RowMajor {
		return row*m.Cols + col
	}
	return col*m.Rows + row
}

// BitSet is a length-tagged, fixed-size bit array backed by a []uint64
// word array (not a sparse/compressed representation), per the value
// algebra's bitset kind. N and Words are exported so BitSet round-trips
// through the same generic struct encode/decode path as any other record
// (the codecs carry no dedicated packed-bitset wire shape; N/Words are
// encoded as an ordinary two-field record).
type BitSet struct {
	N     int
	Words []uint64
}

// NewBitSet returns a BitSet of n bits, all clear.
func NewBitSet(n int) BitSet {
	return BitSet{N: n, Words: make([]uint64, (n+63)/64)}
}

// Len returns the number of bits in the set.
func (b BitSet) Len() int { return b.N }

// Test reports whether bit i is set.
func (b BitSet) Test(i int) bool {
	if i < 0 || i >= b.N {
		return false
	}
	return b.Words[i/64]&(1<<uint(i%64)) != 0
}

// Set sets bit i to v.
func (b BitSet) Set(i int, v bool) {
	if i < 0 || i >= b.N {
		return
	}
	if v {
		b.Words[i/64] |= 1 << uint(i%64)
	} else {
		b.Words[i/64] &^= 1 << uint(i%64)
	}
}

// String implements fmt.Stringer, rendering the set bits low-to-high.
func (b BitSet) String() string {
	s := make([]byte, b.N)
	for i := 0; i < b.N; i++ {
		if b.Test(i) {
			s[i] = '1'
		} else {
			s[i] = '0'
		}
	}
	return string(s)
}

// Extension is a passthrough value for a MessagePack ext type this module
// doesn't interpret natively (every type besides -1/timestamp): Code is
// the ext-type byte, Data is the raw payload. It is a type alias so
// internal/msgpack's reflect.Type-keyed recognition of the passthrough
// shape sees straight through to it.
//
// CBOR's tag space is a 64-bit integer rather than MessagePack's signed
// byte, so it doesn't share this type: internal/cbor recognizes only the
// tags this module gives meaning to (timestamp, complex scalar/array) and
// decodes any other tagged value directly, discarding the tag.
type Extension = msgpack.Extension

// RawJSON holds a JSON value verbatim — Marshal copies it through
// unexamined, Unmarshal captures the exact source bytes of the value
// without parsing them. It is a type alias (not a defined type) so that
// internal/json's reflect.Type-keyed recognition of the raw-passthrough
// shape sees straight through to it.
type RawJSON = json.RawMessage

var _ = fmt.Stringer(BitSet{})
