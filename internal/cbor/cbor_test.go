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

package cbor

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

func encodeInt(t *testing.T, n int64) []byte {
	t.Helper()
	enc := &Encoder{}
	buf, err := enc.Encode(nil, reflect.ValueOf(n))
	require.NoError(t, err)
	return buf
}

func TestCanonicalIntegerEncodings(t *testing.T) {
	t.Parallel()

	require.Equal(t, []byte{0x00}, encodeInt(t, 0))
	require.Equal(t, []byte{0x20}, encodeInt(t, -1))
	require.Equal(t, []byte{0x19, 0x03, 0xE8}, encodeInt(t, 1000))
}

type record struct {
	Name string
	Tags []int32
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	in := record{Name: "zebra", Tags: []int32{1, -2, 3}}
	enc := &Encoder{}
	buf, err := enc.Encode(nil, reflect.ValueOf(in))
	require.NoError(t, err)

	var out record
	dec := &Decoder{}
	_, err = dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripTypedFloatArray(t *testing.T) {
	t.Parallel()

	in := []float64{1.5, -2.25, 3.0}
	enc := &Encoder{}
	buf, err := enc.Encode(nil, reflect.ValueOf(in))
	require.NoError(t, err)
	require.Equal(t, byte(majTag<<5|addUint8), buf[0])

	var out []float64
	dec := &Decoder{}
	_, err = dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripComplex(t *testing.T) {
	t.Parallel()

	in := complex(1.5, -2.5)
	enc := &Encoder{}
	buf, err := enc.Encode(nil, reflect.ValueOf(in))
	require.NoError(t, err)

	var out complex128
	dec := &Decoder{}
	_, err = dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
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
	enc := &Encoder{}
	buf, err := enc.Encode(nil, reflect.ValueOf(bigger{Name: "x", Extra: 1}))
	require.NoError(t, err)

	dec := &Decoder{Options: wire.DefaultReadOptions()}
	var out smaller
	_, err = dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.Error(t, err)

	dec2 := &Decoder{Options: wire.ReadOptions{ErrorOnUnknownKeys: false}}
	var out2 smaller
	_, err = dec2.Decode(buf, 0, reflect.ValueOf(&out2).Elem())
	require.NoError(t, err)
	require.Equal(t, "x", out2.Name)
}
