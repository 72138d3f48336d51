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

import "io"

// StreamSource adapts an io.Reader into a Source using a refill/consume
// pull model, for a stream-backed input collaborator. Unlike
// SliceSource, Len is unknown until EOF is reached.
type StreamSource struct {
	r         io.Reader
	buf       []byte
	start     int // bytes before start have been consumed
	totalRead int
	eof       bool
}

// NewStreamSource wraps r as a Source, refilling from it in chunkSize
// increments (or 4096 if chunkSize <= 0).
func NewStreamSource(r io.Reader, chunkSize int) *StreamSource {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &StreamSource{r: r, buf: make([]byte, 0, chunkSize)}
}

// refill ensures at least n unconsumed bytes are buffered, short of EOF.
func (s *StreamSource) refill(n int) {
	for !s.eof && len(s.buf)-s.start < n {
		chunk := make([]byte, max(cap(s.buf), n))
		read, err := s.r.Read(chunk)
		if read > 0 {
			s.buf = append(s.buf, chunk[:read]...)
		}
		if err != nil {
			s.eof = true
		}
	}
}

func (s *StreamSource) Peek(n int) []byte {
	s.refill(n)
	end := s.start + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	return s.buf[s.start:end]
}

func (s *StreamSource) Advance(n int) {
	s.start += n
	s.totalRead += n
	// Compact periodically so the buffer doesn't grow without bound over a
	// long stream.
	if s.start > cap(s.buf)/2 {
		s.buf = append(s.buf[:0], s.buf[s.start:]...)
		s.start = 0
	}
}

func (s *StreamSource) Pos() int { return s.totalRead }

func (s *StreamSource) Len() int {
	if s.eof {
		return s.totalRead + (len(s.buf) - s.start)
	}
	return -1
}

func (s *StreamSource) EOF() bool {
	s.refill(1)
	return s.start >= len(s.buf) && s.eof
}
