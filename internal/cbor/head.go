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

// Package cbor implements the CBOR codec of §4.3.4: RFC 8949 major types
// plus RFC 8746 typed-array tags and two custom tags (43000/43001) for
// complex scalars/arrays. head.go holds the initial-byte encode/decode,
// typedarray.go the RFC 8746 tag table, encode.go/decode.go the
// reflect-driven reader/writer.
package cbor

import "encoding/binary"

// Major types, per RFC 8949 §3.
const (
	majUnsigned = 0
	majNegative = 1
	majBytes    = 2
	majText     = 3
	majArray    = 4
	majMap      = 5
	majTag      = 6
	majSimple   = 7
)

// Additional-info values with out-of-line length encodings.
const (
	addUint8  = 24
	addUint16 = 25
	addUint32 = 26
	addUint64 = 27
)

// Simple values under major 7.
const (
	simpleFalse = 20
	simpleTrue  = 21
	simpleNull  = 22
	simpleUndef = 23
	simpleF16   = 25
	simpleF32   = 26
	simpleF64   = 27
)

// CBOR tags this codec understands.
const (
	tagTimestampEpoch = 1
	tagComplexScalar  = 43000
	tagComplexArray   = 43001
)

// appendHead appends a CBOR initial byte plus its argument for (major,n),
// choosing the shortest encoding, per RFC 8949's preferred-serialization
// rule.
func appendHead(buf []byte, major byte, n uint64) []byte {
	switch {
	case n < 24:
		return append(buf, major<<5|byte(n))
	case n <= 0xff:
		return append(buf, major<<5|addUint8, byte(n))
	case n <= 0xffff:
		buf = append(buf, major<<5|addUint16)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(n))
		return append(buf, tmp[:]...)
	case n <= 0xffffffff:
		buf = append(buf, major<<5|addUint32)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(n))
		return append(buf, tmp[:]...)
	default:
		buf = append(buf, major<<5|addUint64)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], n)
		return append(buf, tmp[:]...)
	}
}

// readHead decodes the initial byte (and any follow-on length bytes)
// starting at buf[off], returning the major type, the argument value, and
// the offset just past the head.
func readHead(buf []byte, off int) (major byte, arg uint64, next int, ok bool) {
	if off >= len(buf) {
		return 0, 0, off, false
	}
	b := buf[off]
	major = b >> 5
	info := b & 0x1f
	off++
	if major == majSimple && info >= simpleF16 && info <= simpleF64 {
		// Float heads: the argument is the additional info itself
		// (simpleF16/F32/F64); the caller reads the payload at next.
		return major, uint64(info), off, true
	}
	switch {
	case info < 24:
		return major, uint64(info), off, true
	case info == addUint8:
		if off+1 > len(buf) {
			return 0, 0, off, false
		}
		return major, uint64(buf[off]), off + 1, true
	case info == addUint16:
		if off+2 > len(buf) {
			return 0, 0, off, false
		}
		return major, uint64(binary.BigEndian.Uint16(buf[off:])), off + 2, true
	case info == addUint32:
		if off+4 > len(buf) {
			return 0, 0, off, false
		}
		return major, uint64(binary.BigEndian.Uint32(buf[off:])), off + 4, true
	case info == addUint64:
		if off+8 > len(buf) {
			return 0, 0, off, false
		}
		return major, binary.BigEndian.Uint64(buf[off:]), off + 8, true
	default:
		// Indefinite-length (info==31) and reserved values (28-30) are out
		// of scope: every value this codec writes uses definite lengths.
		return 0, 0, off, false
	}
}
