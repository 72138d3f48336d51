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

// Package zc provides a zero-copy representation of a []byte as an offset
// and length into some other, shared source buffer.
//
// This plays the same role as a packed-uint64 Range type: a
// compact handle a lazy view can hold onto instead of slicing the source
// buffer up front. Here it is kept as two plain ints rather than packed
// into one machine word over unsafe pointers, since lazy BEVE views never
// outlive the buffer they were built from and there is no GC-arena hazard
// to design around.
package zc

import "fmt"

// Span is a [Start, Start+Len) window into a shared source buffer.
//
// The zero value represents an empty span at offset 0.
type Span struct {
	Start int
	Len   int
}

// NewSpan returns a span covering [start, end) of some source buffer.
func NewSpan(start, end int) Span {
	if end < start {
		panic(fmt.Sprintf("zc: invalid span [%d:%d)", start, end))
	}
	return Span{Start: start, Len: end - start}
}

// End returns the exclusive end offset of the span.
func (s Span) End() int { return s.Start + s.Len }

// Empty reports whether the span has zero length.
func (s Span) Empty() bool { return s.Len == 0 }

// Bytes slices src according to the span. src must be the same buffer (or
// an identical prefix) the span was constructed against.
func (s Span) Bytes(src []byte) []byte {
	if s.Len == 0 {
		return nil
	}
	return src[s.Start:s.End()]
}

// String returns the span's window into src as a Go string. Go strings are
// immutable, so this copies, unlike Bytes.
func (s Span) String(src []byte) string {
	if s.Len == 0 {
		return ""
	}
	return string(src[s.Start:s.End()])
}

// Format implements fmt.Formatter for readable debug output.
func (s Span) Format(f fmt.State, verb rune) {
	str := fmt.Sprintf("[%d:%d)", s.Start, s.End())
	fmt.Fprintf(f, fmt.FormatString(f, verb), str)
}
