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

	"github.com/polyglot-codec/polyglot"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

func TestRoundTripComplex64(t *testing.T) {
	t.Parallel()

	in := complex(float32(1.5), float32(-2.25))
	buf := encodeTo(t, in)
	require.Equal(t, extensionTag(extComplex), buf[0])

	var out complex64
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRoundTripComplex128(t *testing.T) {
	t.Parallel()

	in := complex(3.14159, -2.71828)
	buf := encodeTo(t, in)
	require.Equal(t, extensionTag(extComplex), buf[0])

	var out complex128
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestSkipValueOverComplex(t *testing.T) {
	t.Parallel()

	buf := encodeTo(t, complex128(complex(1, 2)))

	var ctx wire.Context
	next, kind, err := skipValue(buf, 0, &ctx)
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Equal(t, wire.KindComplex, kind)
}

func TestRoundTripMatrix(t *testing.T) {
	t.Parallel()

	in := polyglot.Matrix[float64]{Rows: 2, Cols: 3, RowMajor: true, Data: []float64{1, 2, 3, 4, 5, 6}}
	buf := encodeTo(t, in)
	require.Equal(t, extensionTag(extMatrix), buf[0])

	var out polyglot.Matrix[float64]
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestSkipValueOverMatrix(t *testing.T) {
	t.Parallel()

	in := polyglot.Matrix[int32]{Rows: 1, Cols: 4, RowMajor: false, Data: []int32{9, 8, 7, 6}}
	buf := encodeTo(t, in)

	var ctx wire.Context
	next, kind, err := skipValue(buf, 0, &ctx)
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Equal(t, wire.KindMatrix, kind)
}

func TestDecodeVariantExtensionIgnoresAlternativeIndex(t *testing.T) {
	t.Parallel()

	// A hand-built ext-variant value: tag, a compressed alternative index
	// (value doesn't matter to the decoder), then the inner value.
	var buf []byte
	buf = append(buf, extensionTag(extVariant))
	buf = writeCompressedInt(buf, 2)
	buf = append(buf, encodeTo(t, int32(42))...)

	var out int32
	dec := &Decoder{}
	next, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, len(buf), next)
	require.Equal(t, int32(42), out)
}

func TestDecodeSkipsLeadingDelimiter(t *testing.T) {
	t.Parallel()

	inner := encodeTo(t, int32(7))
	buf := append([]byte{extensionTag(extDelimiter)}, inner...)

	var out int32
	dec := &Decoder{}
	_, err := dec.Decode(buf, 0, reflect.ValueOf(&out).Elem())
	require.NoError(t, err)
	require.Equal(t, int32(7), out)
}

func TestScannerMultipleDocuments(t *testing.T) {
	t.Parallel()

	a := encodeTo(t, int32(1))
	b := encodeTo(t, "two")
	c := encodeTo(t, []int32{3, 3, 3})

	var buf []byte
	buf = append(buf, a...)
	buf = append(buf, extensionTag(extDelimiter))
	buf = append(buf, b...)
	buf = append(buf, extensionTag(extDelimiter))
	buf = append(buf, c...)

	sc := NewScanner(buf)

	doc, ok, err := sc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, a, doc)

	doc, ok, err = sc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, b, doc)

	doc, ok, err = sc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c, doc)

	_, ok, err = sc.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScannerSingleDocumentNoDelimiter(t *testing.T) {
	t.Parallel()

	buf := encodeTo(t, "solo")
	sc := NewScanner(buf)

	doc, ok, err := sc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, buf, doc)

	_, ok, err = sc.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
