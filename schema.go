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
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/schema"
)

// Schema is an opaque, cached reflection surface for a Go struct type: its
// field table and key-hash lookup strategy, compiled once per type and
// reused by every subsequent Marshal/Unmarshal call.
type Schema struct {
	desc *schema.Descriptor
}

// Compile derives a Schema for T by walking its reflect.Type directly,
// rather than parsing one from a separate IDL file.
//
// Compile is safe to call repeatedly and from multiple goroutines; the
// underlying internal/schema.Descriptor is cached per type and built at
// most once, even under concurrent first use.
func Compile[T any]() (*Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, &Error{Kind: GetWrongType, Message: "polyglot: cannot compile a schema for a nil interface type"}
	}
	d, err := schema.CompileCached(t)
	if err != nil {
		return nil, &Error{Kind: InvalidBody, Message: err.Error()}
	}
	return &Schema{desc: d}, nil
}

// NumFields returns the number of fields surfaced by the schema.
func (s *Schema) NumFields() int { return s.desc.Size() }

// KeyRenamer lets a record type override the name each of its fields is
// encoded/decoded under, uniformly across every field.
type KeyRenamer interface {
	RenameKey(name string) string
}

// Aliaser lets a record type accept and/or emit more than one wire name
// for a field.
type Aliaser interface {
	Aliases() map[string][]string
}

// SchemaProvider lets a record type declare its wire field order and
// names explicitly, instead of relying on Go's struct-declaration order
// and field names (optionally adjusted by `poly` tags).
type SchemaProvider interface {
	SchemaFields() []string
}

// VariantTag lets a record type declare the struct field used as a sum-
// type discriminator, for the variant codec path.
type VariantTag interface {
	VariantTagName() string
}
