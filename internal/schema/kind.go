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

package schema

import (
	"reflect"
	"time"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

var (
	timeType = reflect.TypeOf(time.Time{})
)

// namedKind identifies a handful of well-known generic shapes by name
// rather than import (internal/schema must not import the root package,
// which defines Matrix/BitSet/OrderedMap, to avoid an import cycle; the
// codecs, which do import both, use these names to special-case encoding).
// Extension doesn't need this treatment: it has no type parameters, so it
// lives in internal/wire and is recognized by exact reflect.Type equality
// instead (see wire.ExtensionType above). RawJSON similarly has no type
// parameters, but it is a plain []byte underlying type with no distinct
// runtime shape to test for here; it falls through to the ordinary
// reflect.Slice/KindBytes case below and is recognized structurally by
// internal/json instead, which is the only codec that treats it
// specially.
const (
	NamedNone       = ""
	NamedMatrix     = "Matrix"
	NamedBitSet     = "BitSet"
	NamedOptional   = "Optional"
	NamedOrderedMap = "OrderedMap"
)

// NamedShapeOf reports which of the Named* generic shapes t is, for codecs
// that need to special-case encode/decode beyond the Kind classification
// below (BEVE's matrix extension, for instance, which has a dedicated wire
// shape that the generic struct encoder doesn't produce).
func NamedShapeOf(t reflect.Type) string { return namedShape(t) }

// namedShape returns one of the Named* constants if t's defining package is
// polyglot and its name has the matching generic-instantiation prefix, else
// NamedNone.
func namedShape(t reflect.Type) string {
	if t.PkgPath() != "github.com/polyglot-codec/polyglot" {
		return NamedNone
	}
	name := t.Name()
	for _, n := range []string{NamedMatrix, NamedBitSet, NamedOptional, NamedOrderedMap} {
		if name == n || (len(name) > len(n) && name[:len(n)] == n && name[len(n)] == '[') {
			return n
		}
	}
	return NamedNone
}

// KindOf classifies a reflect.Type into a value-algebra Kind.
func KindOf(t reflect.Type) wire.Kind {
	if t == timeType {
		return wire.KindTimestamp
	}
	if t == wire.ExtensionType {
		return wire.KindExtension
	}
	switch namedShape(t) {
	case NamedMatrix:
		return wire.KindMatrix
	case NamedBitSet:
		return wire.KindBitSet
	case NamedOptional:
		return wire.KindOptional
	case NamedOrderedMap:
		// An OrderedMap is a struct; the Struct case below classifies it.
	}

	switch t.Kind() {
	case reflect.Bool:
		return wire.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return wire.KindUint
	case reflect.Float32, reflect.Float64:
		return wire.KindFloat
	case reflect.Complex64, reflect.Complex128:
		return wire.KindComplex
	case reflect.String:
		return wire.KindString
	case reflect.Ptr:
		return wire.KindOptional
	case reflect.Interface:
		return wire.KindVariant
	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		if elem.Kind() == reflect.Uint8 {
			return wire.KindBytes
		}
		if isNumericKind(elem.Kind()) {
			return wire.KindNumericArray
		}
		return wire.KindSequence
	case reflect.Map:
		if isStringKind(t.Key().Kind()) {
			return wire.KindStringMap
		}
		if isNumericKind(t.Key().Kind()) {
			return wire.KindIntMap
		}
		return wire.KindSequence
	case reflect.Struct:
		if namedShape(t) == NamedOrderedMap {
			// OrderedMap[K, V]'s first type parameter determines string-
			// vs int-keyed classification; codecs introspect this
			// directly via the polyglot.OrderedMapReflector contract
			// rather than through this helper.
			return wire.KindStringMap
		}
		return wire.KindInvalid // nested record; handled by recursive descriptor compilation
	default:
		return wire.KindInvalid
	}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isStringKind(k reflect.Kind) bool { return k == reflect.String }
