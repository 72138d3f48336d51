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
	"hash/fnv"

	"github.com/polyglot-codec/polyglot/internal/dbg"
	"github.com/polyglot-codec/polyglot/internal/dict"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// OrderedMapReflector is the contract a codec uses to encode any
// OrderedMap[K, V] instantiation as a map without reaching into its
// unexported backing dictionary. Every OrderedMap[K, V] implements it.
type OrderedMapReflector = wire.OrderedMapReader

// OrderedMap is an insertion-ordered, robin-hood-hashed dictionary:
// iteration, Nth/Front/Back, and encoding all see entries in insertion
// order regardless of hash layout. The zero value is an empty, usable map.
type OrderedMap[K comparable, V any] struct {
	d *dict.Dict[K, V]
}

// orderedMapHash hashes an arbitrary comparable key by its formatted
// representation. Go has no built-in way to hash an arbitrary comparable
// type generically (unlike the original's std::hash specialization), so
// this stands in for a caller-supplied hash function; it is slower than a
// type-specific hash but keeps the generic map usable out of the box.
func orderedMapHash[K comparable](k K) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%#v", k)
	return h.Sum64()
}

func (m *OrderedMap[K, V]) ensure() {
	if m.d == nil {
		m.d = dict.New[K, V](orderedMapHash[K])
	}
}

// NewOrderedMap returns an empty OrderedMap. Equivalent to the zero value;
// provided for symmetry with NewMatrix/NewBitSet.
func NewOrderedMap[K comparable, V any]() OrderedMap[K, V] {
	var m OrderedMap[K, V]
	m.ensure()
	return m
}

// Len returns the number of entries.
func (m OrderedMap[K, V]) Len() int {
	if m.d == nil {
		return 0
	}
	return m.d.Len()
}

// Insert adds (k, v) if k is absent, returning its insertion-order index
// and whether an insertion occurred.
func (m *OrderedMap[K, V]) Insert(k K, v V) (int, bool) {
	m.ensure()
	return m.d.Insert(k, v)
}

// InsertOrAssign inserts (k, v), or replaces the existing value for k in
// place, preserving its original insertion-order position.
func (m *OrderedMap[K, V]) InsertOrAssign(k K, v V) (int, bool) {
	m.ensure()
	return m.d.InsertOrAssign(k, v)
}

// TryEmplace inserts (k, build()) only if k is absent, without evaluating
// build when k is already present.
func (m *OrderedMap[K, V]) TryEmplace(k K, build func() V) (int, bool) {
	m.ensure()
	return m.d.TryEmplace(k, build)
}

// Set is a convenience wrapper over InsertOrAssign.
func (m *OrderedMap[K, V]) Set(k K, v V) { m.ensure(); m.d.Set(k, v) }

// EraseKey removes k, preserving the relative order of the remaining keys.
func (m *OrderedMap[K, V]) EraseKey(k K) bool {
	if m.d == nil {
		return false
	}
	return m.d.EraseKey(k)
}

// UnorderedEraseKey removes k in O(1) amortized time by swapping the
// last-inserted entry into its slot; it does not preserve order among the
// remaining keys (the former last key ends up where the
// removed key was).
func (m *OrderedMap[K, V]) UnorderedEraseKey(k K) bool {
	if m.d == nil {
		return false
	}
	return m.d.UnorderedEraseKey(k)
}

// Find returns the value for k and true, or the zero value and false.
func (m OrderedMap[K, V]) Find(k K) (V, bool) {
	if m.d == nil {
		var zero V
		return zero, false
	}
	return m.d.Find(k)
}

// At returns the value for k, panicking if absent.
func (m OrderedMap[K, V]) At(k K) V { return m.d.At(k) }

// Contains reports whether k is present.
func (m OrderedMap[K, V]) Contains(k K) bool {
	if m.d == nil {
		return false
	}
	return m.d.Contains(k)
}

// Count returns 1 if k is present, 0 otherwise.
func (m OrderedMap[K, V]) Count(k K) int {
	if m.d == nil {
		return 0
	}
	return m.d.Count(k)
}

// Nth returns the key and value at insertion-order position i.
func (m OrderedMap[K, V]) Nth(i int) (K, V) { return m.d.Nth(i) }

// Front returns the first-inserted (key, value) still present.
func (m OrderedMap[K, V]) Front() (K, V) { return m.d.Front() }

// Back returns the last-inserted (key, value) still present.
func (m OrderedMap[K, V]) Back() (K, V) { return m.d.Back() }

// Rehash resizes the bucket array to at least n, reinserting every value.
func (m *OrderedMap[K, V]) Rehash(n int) { m.ensure(); m.d.Rehash(n) }

// Reserve ensures the map can hold at least n entries before its next
// rehash.
func (m *OrderedMap[K, V]) Reserve(n int) { m.ensure(); m.d.Reserve(n) }

// ShrinkToFit rehashes to the smallest capacity that fits the current
// entries at the current load factor.
func (m *OrderedMap[K, V]) ShrinkToFit() {
	if m.d != nil {
		m.d.ShrinkToFit()
	}
}

// SetMaxLoadFactor sets the load factor, clamped to [0.10, 0.95].
func (m *OrderedMap[K, V]) SetMaxLoadFactor(f float64) { m.ensure(); m.d.SetMaxLoadFactor(f) }

// Swap exchanges the contents of m and other.
func (m *OrderedMap[K, V]) Swap(other *OrderedMap[K, V]) {
	m.ensure()
	other.ensure()
	m.d.Swap(other.d)
}

// Clone returns a copy with its own backing storage.
func (m OrderedMap[K, V]) Clone() OrderedMap[K, V] {
	if m.d == nil {
		return OrderedMap[K, V]{}
	}
	return OrderedMap[K, V]{d: m.d.Clone()}
}

// Keys returns the keys in insertion order.
func (m OrderedMap[K, V]) Keys() []K {
	if m.d == nil {
		return nil
	}
	return m.d.Keys()
}

// All iterates entries in insertion order, in the style of Go 1.23
// range-over-func iterators.
func (m OrderedMap[K, V]) All(yield func(K, V) bool) {
	if m.d == nil {
		return
	}
	m.d.All(yield)
}

// String renders m's entries in insertion order, reusing the existing
// delayed-formatting Dict helper instead of building a strings.Builder
// dump by hand.
func (m OrderedMap[K, V]) String() string {
	kv := make([]any, 0, m.Len()*2)
	m.All(func(k K, v V) bool {
		kv = append(kv, k, v)
		return true
	})
	return dbg.Dict("OrderedMap", kv...).String()
}

// EqualOrderedMap reports whether a and b contain the same sequence of
// (key, value) pairs in the same order.
func EqualOrderedMap[K comparable, V comparable](a, b OrderedMap[K, V]) bool {
	if a.d == nil || b.d == nil {
		return a.Len() == 0 && b.Len() == 0
	}
	return dict.Equal(a.d, b.d)
}

// MapLen implements OrderedMapReflector.
func (m OrderedMap[K, V]) MapLen() int { return m.Len() }

// MapEntry implements OrderedMapReflector.
func (m OrderedMap[K, V]) MapEntry(i int) (any, any) {
	k, v := m.d.Nth(i)
	return k, v
}

// MapInit implements wire.OrderedMapWriter.
func (m *OrderedMap[K, V]) MapInit() { m.ensure() }

// MapNewValue implements wire.OrderedMapWriter, handing the codec a
// pointer to a fresh zero V to decode a member's value into.
func (m *OrderedMap[K, V]) MapNewValue() any { return new(V) }

// MapInsertString implements wire.OrderedMapWriter. It succeeds only when
// K is string; any other key type returns an error, since a decoded
// document's map keys arrive as strings (or, for CBOR/MessagePack integer-
// keyed maps, are not routed through this path at all).
func (m *OrderedMap[K, V]) MapInsertString(key string, valuePtr any) error {
	var k K
	switch kk := any(&k).(type) {
	case *string:
		*kk = key
	default:
		return &Error{Kind: GetWrongType, Message: "OrderedMap: decode target is not string-keyed"}
	}
	v, ok := valuePtr.(*V)
	if !ok {
		return &Error{Kind: GetWrongType, Message: "OrderedMap: value type mismatch"}
	}
	m.ensure()
	m.d.InsertOrAssign(k, *v)
	return nil
}
