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

// Package schema is the reflection front-end: given a Go
// struct type, it derives an ordered field table (names, accessors, kinds)
// and picks a key-hash lookup strategy for it.
//
// Field surfacing follows Go's native structural introspection
// (reflect.Type over exported fields); a type additionally satisfying
// SchemaProvider takes the "explicit static value list" path instead.
// Both converge on the same Descriptor shape.
package schema

import (
	"fmt"
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/keyhash"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// KeyRenamer is the rename hook: if a record type implements
// it, RenameKey is applied to every surfaced key before hashing/emission.
type KeyRenamer interface {
	RenameKey(name string) string
}

// Aliaser is the modify-table extension: Aliases maps a field's
// primary (post-rename) name to additional accepted/emitted names.
type Aliaser interface {
	Aliases() map[string][]string
}

// SchemaProvider is the "explicit static value list" field-surfacing path:
// SchemaFields returns field names in struct-declaration order,
// overriding the tag/Go-name-derived ones one-for-one.
type SchemaProvider interface {
	SchemaFields() []string
}

// VariantTag lets a record type declare an explicit sum-type discriminator
// field name, used by the variant codec path instead of structural
// inference.
type VariantTag interface {
	VariantTagName() string
}

// Field describes one surfaced field of a record type.
type Field struct {
	Name        string // primary, post-rename, post-alias-selection name
	Aliases     []string
	StructIndex int
	GoName      string
	Type        reflect.Type
	Kind        wire.Kind
	OmitNull    bool // this field additionally honors skip_null_members on its own
}

// Get returns the field's value out of recv, an addressable struct value.
func (f *Field) Get(recv reflect.Value) reflect.Value {
	return recv.Field(f.StructIndex)
}

// Set assigns v into the field's slot in recv, an addressable struct
// value.
func (f *Field) Set(recv reflect.Value, v reflect.Value) {
	recv.Field(f.StructIndex).Set(v)
}

// Descriptor is the compiled reflection surface for one record type:
// fields in surfaced order, a key-hash lookup strategy over their (and
// their aliases') names, and a stable per-process seed.
type Descriptor struct {
	Type     reflect.Type
	Fields   []Field
	Strategy keyhash.Strategy
	Seed     uint64

	// allNames holds every name (primary + aliases) in lookup-table order,
	// parallel to the slice handed to keyhash.Select; nameToField maps
	// each such name back to a Fields index.
	allNames    []string
	nameToField []int
}

// Size returns N, the number of surfaced fields.
func (d *Descriptor) Size() int { return len(d.Fields) }

// Lookup resolves a wire key to a field index using the compiled
// strategy, honoring both primary names and aliases.
func (d *Descriptor) Lookup(key string) (int, bool) {
	i, ok := d.Strategy.Lookup(key)
	if !ok {
		return -1, false
	}
	return d.nameToField[i], true
}

// Compile derives a Descriptor for t, which must be a struct type (or a
// pointer to one).
func Compile(t reflect.Type) (*Descriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct type", t)
	}

	var rename func(string) string
	if rn, ok := reflect.New(t).Interface().(KeyRenamer); ok {
		rename = rn.RenameKey
	}
	var aliasesOf map[string][]string
	if al, ok := reflect.New(t).Interface().(Aliaser); ok {
		aliasesOf = al.Aliases()
	}
	var explicitNames []string
	if sp, ok := reflect.New(t).Interface().(SchemaProvider); ok {
		explicitNames = sp.SchemaFields()
	}

	d := &Descriptor{Type: t}
	explicitIdx := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		info := parseTag(sf.Tag.Get("poly"))
		if info.skip {
			continue
		}
		if sf.Type.Kind() == reflect.Func && !info.methods {
			continue
		}

		name := sf.Name
		if info.name != "" {
			name = info.name
		}
		if explicitNames != nil {
			if explicitIdx >= len(explicitNames) {
				return nil, fmt.Errorf("schema: %s: SchemaFields has fewer names than surfaced fields", t)
			}
			name = explicitNames[explicitIdx]
			explicitIdx++
		}
		if rename != nil {
			name = rename(name)
		}

		f := Field{
			Name:        name,
			Aliases:     append([]string(nil), info.aliases...),
			StructIndex: i,
			GoName:      sf.Name,
			Type:        sf.Type,
			Kind:        KindOf(sf.Type),
			OmitNull:    info.omitNull,
		}
		if aliasesOf != nil {
			f.Aliases = append(f.Aliases, aliasesOf[f.Name]...)
		}
		d.Fields = append(d.Fields, f)
	}

	for fi := range d.Fields {
		f := &d.Fields[fi]
		d.allNames = append(d.allNames, f.Name)
		d.nameToField = append(d.nameToField, fi)
		for _, a := range f.Aliases {
			d.allNames = append(d.allNames, a)
			d.nameToField = append(d.nameToField, fi)
		}
	}
	d.Strategy = keyhash.Select(d.allNames)
	d.Seed = processSeed()
	FieldCountMean.Record(float64(len(d.Fields)))
	return d, nil
}
