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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

type widget struct {
	Name    string
	Count   int32
	Ratio   float64
	Tags    []string
	Enabled bool
}

func encodeTo(t *testing.T, v any) []byte {
	t.Helper()
	enc := &Encoder{Options: wire.DefaultWriteOptions()}
	buf, err := enc.Encode(nil, reflect.ValueOf(v))
	require.NoError(t, err)
	return buf
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	in := widget{Name: "zebra", Count: 7, Ratio: 2.5, Tags: []string{"a", "bb", "ccc"}, Enabled: true}
	buf := encodeTo(t, in)

	var out widget
	dec := &Decoder{Options: wire.DefaultReadOptions()}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripNumericArray(t *testing.T) {
	t.Parallel()

	in := []int32{1, -2, 3, 400000}
	buf := encodeTo(t, in)

	var out []int32
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripStringMap(t *testing.T) {
	t.Parallel()

	in := map[string]int{"zebra": 1, "apple": 2, "mango": 3}
	buf := encodeTo(t, in)

	out := map[string]int{}
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestUnknownKeyErrorsByDefault(t *testing.T) {
	t.Parallel()

	type bigger struct {
		Name  string
		Extra int
	}
	type smaller struct {
		Name string
	}

	buf := encodeTo(t, bigger{Name: "x", Extra: 9})

	var out smaller
	dec := &Decoder{Options: wire.DefaultReadOptions()}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.Error(t, err)

	dec2 := &Decoder{Options: wire.ReadOptions{ErrorOnUnknownKeys: false}}
	var out2 smaller
	_, err = dec2.Decode(buf, 0, reflect.ValueOf(&out2).Elem())
	require.NoError(t, err)
	require.Equal(t, "x", out2.Name)
}

func TestLazyViewKeyLookupWrapsOnce(t *testing.T) {
	t.Parallel()

	in := widget{Name: "zebra", Count: 7, Ratio: 2.5, Tags: []string{"a", "b"}, Enabled: true}
	buf := encodeTo(t, in)

	doc := NewDocument(buf)
	root := doc.Root()

	// Look up fields out of declaration order, forcing the cursor to wrap.
	v, ok := root.Key("Enabled")
	require.True(t, ok)
	b, ok := v.Bool()
	require.True(t, ok)
	require.True(t, b)

	v, ok = root.Key("Name")
	require.True(t, ok)
	span, ok := v.Bytes()
	require.True(t, ok)
	require.Equal(t, "zebra", span.String(buf))

	_, ok = root.Key("DoesNotExist")
	require.False(t, ok)
	require.Nil(t, doc.Err())
}

func TestLazyIndexedViewRandomAccess(t *testing.T) {
	t.Parallel()

	in := widget{Name: "mango", Count: 1, Ratio: 0, Tags: []string{"x", "y", "z"}, Enabled: false}
	buf := encodeTo(t, in)

	doc := NewDocument(buf)
	root := doc.Root()
	iv, ok := root.ToIndexed()
	require.True(t, ok)
	require.Equal(t, 5, iv.Len())

	v, ok := iv.Key("Count")
	require.True(t, ok)
	require.Equal(t, wire.KindInt, v.Kind())

	_, ok = iv.Key("nope")
	require.False(t, ok)
}

func TestSkipValueOverTypedArray(t *testing.T) {
	t.Parallel()

	buf := encodeTo(t, []int32{1, 2, 3})

	var ctx wire.Context
	next, kind, err := skipValue(buf, 0, &ctx)
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Equal(t, wire.KindNumericArray, kind)
}

func TestCompressedIntRoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []uint64{0, 1, 63, 64, 16383, 16384, 1 << 29, 1 << 30, 1 << 40} {
		buf := writeCompressedInt(nil, v)
		got, n, ok := readCompressedInt(buf)
		require.True(t, ok)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}
