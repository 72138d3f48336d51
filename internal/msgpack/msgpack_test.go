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

package msgpack

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

func encodeTo(t *testing.T, opts wire.WriteOptions, v any) []byte {
	t.Helper()
	enc := &Encoder{Options: opts}
	buf, err := enc.Encode(nil, reflect.ValueOf(v))
	require.NoError(t, err)
	return buf
}

type widget struct {
	Name  string
	Count int32
	Tags  []string
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	in := widget{Name: "gizmo", Count: 7, Tags: []string{"a", "b"}}
	buf := encodeTo(t, wire.WriteOptions{}, in)

	var out widget
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripUTF8String(t *testing.T) {
	t.Parallel()

	in := "héllo, 世界 🎉"
	buf := encodeTo(t, wire.WriteOptions{}, in)

	var out string
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripTimestamp(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 3, 15, 12, 30, 0, 123456789, time.UTC)
	buf := encodeTo(t, wire.WriteOptions{}, in)
	require.Equal(t, byte(0xd7), buf[0])

	var out time.Time
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.True(t, in.Equal(out))
	require.Equal(t, in.Nanosecond(), out.Nanosecond())
}

func TestRoundTripTimestampWholeSeconds(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	buf := encodeTo(t, wire.WriteOptions{}, in)
	require.Equal(t, byte(0xd6), buf[0])

	var out time.Time
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.True(t, in.Equal(out))
}

func TestRoundTripExtensionPassthrough(t *testing.T) {
	t.Parallel()

	in := Extension{Code: 5, Data: []byte{0xde, 0xad, 0xbe, 0xef}}
	buf := encodeTo(t, wire.WriteOptions{}, in)

	var out Extension
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestStructsAsArraysOption(t *testing.T) {
	t.Parallel()

	in := widget{Name: "gizmo", Count: 7, Tags: []string{"a"}}
	buf := encodeTo(t, wire.WriteOptions{StructsAsArrays: true}, in)
	require.Equal(t, byte(0x90|3), buf[0])

	var out widget
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
	buf := encodeTo(t, wire.WriteOptions{}, bigger{Name: "x", Extra: 1})

	dec := &Decoder{Options: wire.DefaultReadOptions()}
	var out smaller
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.Error(t, err)

	dec2 := &Decoder{Options: wire.ReadOptions{ErrorOnUnknownKeys: false}}
	var out2 smaller
	_, err = dec2.Decode(buf, 0, reflect.ValueOf(&out2).Elem())
	require.NoError(t, err)
	require.Equal(t, "x", out2.Name)
}

func TestRoundTripStringMap(t *testing.T) {
	t.Parallel()

	in := map[string]int32{"one": 1, "two": 2, "three": 3}
	buf := encodeTo(t, wire.WriteOptions{}, in)

	out := make(map[string]int32)
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}
