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

package wire

// Sink is the buffer trait a codec writes into. Implementations
// exist for growable byte containers (GrowSink) and fixed-capacity spans
// (SpanSink); a raw-pointer, trust-the-caller variant is intentionally not
// provided in Go, since there is no safe way to hand out "trust me" memory
// the way a systems language can with a raw pointer and declared capacity.
type Sink interface {
	// Write appends p to the sink, growing it if necessary. It returns
	// false (and should set no bytes) if the sink has a fixed capacity
	// that p would exceed.
	Write(p []byte) bool

	// WriteByte appends a single byte, with the same capacity semantics as
	// Write.
	WriteByte(b byte) bool

	// Len returns the number of bytes written so far.
	Len() int

	// Bytes returns the bytes written so far. The returned slice aliases
	// the sink's internal storage and must not be retained across further
	// writes.
	Bytes() []byte
}

// GrowSink is a Sink backed by a doubling []byte buffer, the default sink
// used by Marshal.
type GrowSink struct {
	buf []byte
}

// NewGrowSink returns a GrowSink with the given initial capacity hint.
func NewGrowSink(capHint int) *GrowSink {
	return &GrowSink{buf: make([]byte, 0, capHint)}
}

func (s *GrowSink) Write(p []byte) bool {
	s.buf = append(s.buf, p...)
	return true
}

func (s *GrowSink) WriteByte(b byte) bool {
	s.buf = append(s.buf, b)
	return true
}

func (s *GrowSink) Len() int      { return len(s.buf) }
func (s *GrowSink) Bytes() []byte { return s.buf }

// SpanSink is a Sink over a fixed-capacity, caller-owned []byte. It never
// reallocates; once capacity is exhausted, writes fail, which callers
// should surface as InsufficientOutputBuffer.
type SpanSink struct {
	buf []byte
	n   int
}

// NewSpanSink wraps buf (whose full capacity, not just its current length,
// is available to write into) as a fixed-capacity Sink.
func NewSpanSink(buf []byte) *SpanSink {
	return &SpanSink{buf: buf[:cap(buf)]}
}

func (s *SpanSink) Write(p []byte) bool {
	if s.n+len(p) > len(s.buf) {
		return false
	}
	copy(s.buf[s.n:], p)
	s.n += len(p)
	return true
}

func (s *SpanSink) WriteByte(b byte) bool {
	if s.n+1 > len(s.buf) {
		return false
	}
	s.buf[s.n] = b
	s.n++
	return true
}

func (s *SpanSink) Len() int      { return s.n }
func (s *SpanSink) Bytes() []byte { return s.buf[:s.n] }

// Source is the buffer trait a codec reads from: a cursor over an
// in-memory buffer, or a pull-model wrapper over a streaming reader.
type Source interface {
	// Peek returns up to n bytes starting at the current position without
	// advancing it. It may return fewer than n bytes at EOF.
	Peek(n int) []byte

	// Advance moves the cursor forward by n bytes, which must have
	// previously been returned by Peek.
	Advance(n int)

	// Pos returns the current byte offset from the start of the source.
	Pos() int

	// Len returns the total number of bytes available, if known. Streaming
	// sources that have not yet read to EOF return -1.
	Len() int

	// EOF reports whether the cursor is at the end of the source.
	EOF() bool
}

// SliceSource is a Source over an in-memory []byte, used by every codec
// when decoding from a fully-buffered document (the common case: JSON,
// BEVE, CBOR and MSGPACK all accept []byte inputs to Unmarshal).
type SliceSource struct {
	buf []byte
	pos int
}

// NewSliceSource wraps buf as a Source.
func NewSliceSource(buf []byte) *SliceSource { return &SliceSource{buf: buf} }

func (s *SliceSource) Peek(n int) []byte {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	return s.buf[s.pos:end]
}

func (s *SliceSource) Advance(n int) { s.pos += n }
func (s *SliceSource) Pos() int      { return s.pos }
func (s *SliceSource) Len() int      { return len(s.buf) }
func (s *SliceSource) EOF() bool     { return s.pos >= len(s.buf) }

// Rest returns every remaining byte without advancing the cursor.
func (s *SliceSource) Rest() []byte { return s.buf[s.pos:] }

// Buf returns the whole underlying buffer, start to end, regardless of
// cursor position. Used by lazy BEVE views, which need absolute offsets
// into the original document.
func (s *SliceSource) Buf() []byte { return s.buf }
