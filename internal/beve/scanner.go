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

import "github.com/polyglot-codec/polyglot/internal/wire"

// Scanner iterates the delimiter-separated top-level BEVE documents in a
// single buffer (NDJSON-style streaming), skipping the bare delimiter byte
// between them. A buffer with no delimiters scans as exactly one document.
type Scanner struct {
	buf []byte
	pos int
	ctx wire.Context
}

// NewScanner wraps buf for sequential multi-document scanning without
// copying it.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Next returns the raw bytes of the next top-level document and advances
// past it, or ok=false once the buffer is exhausted.
func (s *Scanner) Next() (doc []byte, ok bool, err error) {
	for s.pos < len(s.buf) && major(s.buf[s.pos]) == majExtension && extSubID(s.buf[s.pos]) == extDelimiter {
		s.pos++
	}
	if s.pos >= len(s.buf) {
		return nil, false, nil
	}

	start := s.pos
	next, _, serr := skipValue(s.buf, s.pos, &s.ctx)
	if serr != nil {
		return nil, false, serr
	}
	s.pos = next
	return s.buf[start:next], true, nil
}
