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

package schema_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/schema"
)

type renamed struct {
	FirstName string `poly:"first_name"`
	Secret    string `poly:"-"`
	Count     int    `poly:"count,alias=cnt"`
}

func (renamed) RenameKey(name string) string {
	if name == "Count" {
		return "count_renamed_is_overridden" // overridden by explicit tag name below
	}
	return name
}

func TestCompileBasic(t *testing.T) {
	t.Parallel()

	d, err := schema.Compile(reflect.TypeOf(renamed{}))
	require.NoError(t, err)
	require.Equal(t, 2, d.Size())

	names := make([]string, d.Size())
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	require.Equal(t, []string{"first_name", "count"}, names)

	idx, ok := d.Lookup("first_name")
	require.True(t, ok)
	require.Equal(t, 0, idx)

	idx, ok = d.Lookup("cnt")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = d.Lookup("Secret")
	require.False(t, ok)
}

type withProvider struct {
	A int
	B int
}

func (withProvider) SchemaFields() []string { return []string{"alpha", "beta"} }

func TestCompileExplicitProvider(t *testing.T) {
	t.Parallel()

	d, err := schema.Compile(reflect.TypeOf(withProvider{}))
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, func() []string {
		names := make([]string, d.Size())
		for i, f := range d.Fields {
			names[i] = f.Name
		}
		return names
	}())
}

func TestCompileCachedIsStable(t *testing.T) {
	t.Parallel()

	d1, err := schema.CompileCached(reflect.TypeOf(renamed{}))
	require.NoError(t, err)
	d2, err := schema.CompileCached(reflect.TypeOf(renamed{}))
	require.NoError(t, err)
	require.Same(t, d1, d2)
}
