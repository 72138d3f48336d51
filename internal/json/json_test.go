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

package json

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

type person struct {
	Name    string
	Age     int
	Email   string `poly:"email,omitnull"`
	Updated time.Time
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	in := person{Name: "Ada", Age: 30, Updated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	sink := wire.NewGrowSink(64)
	enc := &Encoder{Options: wire.DefaultWriteOptions()}
	require.NoError(t, enc.Encode(sink, reflect.ValueOf(in)))

	var out person
	dec := &Decoder{Options: wire.DefaultReadOptions()}
	require.NoError(t, dec.Decode(wire.NewSliceSource(sink.Bytes()), reflect.ValueOf(&out).Elem()))
	require.Equal(t, in.Name, out.Name)
	require.Equal(t, in.Age, out.Age)
	require.True(t, in.Updated.Equal(out.Updated))
}

func TestTimestampPreservesOffset(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-5", -5*60*60)
	in := time.Date(2026, 3, 4, 5, 6, 7, 0, loc)
	sink := wire.NewGrowSink(32)
	enc := &Encoder{}
	require.NoError(t, enc.Encode(sink, reflect.ValueOf(in)))
	require.Contains(t, string(sink.Bytes()), "-05:00")

	var out time.Time
	dec := &Decoder{}
	require.NoError(t, dec.Decode(wire.NewSliceSource(sink.Bytes()), reflect.ValueOf(&out).Elem()))
	require.True(t, in.Equal(out))
}

func TestPrettifyIndentsArray(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	opts := wire.DefaultWriteOptions()
	opts.Prettify = true
	sink := wire.NewGrowSink(32)
	enc := &Encoder{Options: opts}
	require.NoError(t, enc.Encode(sink, reflect.ValueOf(in)))
	require.Contains(t, string(sink.Bytes()), "\n  1")
}

func TestStrictNumberGrammarRejectsLeadingZero(t *testing.T) {
	t.Parallel()

	var out int
	dec := &Decoder{}
	err := dec.Decode(wire.NewSliceSource([]byte("0123")), reflect.ValueOf(&out).Elem())
	require.Error(t, err)
}

func TestStrictNumberGrammarRequiresDigitAfterDecimal(t *testing.T) {
	t.Parallel()

	var out float64
	dec := &Decoder{}
	err := dec.Decode(wire.NewSliceSource([]byte("1.")), reflect.ValueOf(&out).Elem())
	require.Error(t, err)
}

func TestUnknownKeyErrorsByDefault(t *testing.T) {
	t.Parallel()

	type smaller struct {
		Name string
	}
	dec := &Decoder{Options: wire.DefaultReadOptions()}
	var out smaller
	err := dec.Decode(wire.NewSliceSource([]byte(`{"Name":"x","Extra":1}`)), reflect.ValueOf(&out).Elem())
	require.Error(t, err)

	dec2 := &Decoder{Options: wire.ReadOptions{ErrorOnUnknownKeys: false}}
	var out2 smaller
	err = dec2.Decode(wire.NewSliceSource([]byte(`{"Name":"x","Extra":1}`)), reflect.ValueOf(&out2).Elem())
	require.NoError(t, err)
	require.Equal(t, "x", out2.Name)
}

func TestCommentsOptionSkipsLineAndBlockComments(t *testing.T) {
	t.Parallel()

	input := []byte("// leading comment\n{\"Name\": /* inline */ \"Ada\"}")
	type named struct{ Name string }
	dec := &Decoder{Options: wire.ReadOptions{Comments: true}}
	var out named
	require.NoError(t, dec.Decode(wire.NewSliceSource(input), reflect.ValueOf(&out).Elem()))
	require.Equal(t, "Ada", out.Name)
}

func TestRawMessagePassthrough(t *testing.T) {
	t.Parallel()

	type withRaw struct {
		Payload RawMessage
	}
	input := []byte(`{"Payload":{"nested":[1,2,3]}}`)
	dec := &Decoder{}
	var out withRaw
	require.NoError(t, dec.Decode(wire.NewSliceSource(input), reflect.ValueOf(&out).Elem()))
	require.JSONEq(t, `{"nested":[1,2,3]}`, string(out.Payload))
}
