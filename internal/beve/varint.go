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

import "encoding/binary"

// writeCompressedInt appends v encoded as a BEVE compressed integer: the low 2 bits of the first byte pick a 1/2/4/8
// byte width, and the remaining bits (across however many bytes that width
// implies) hold v shifted left by 2, little-endian.
func writeCompressedInt(buf []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(buf, byte(v<<2)|0)
	case v < 1<<14:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v<<2)|1)
		return append(buf, tmp[:]...)
	case v < 1<<30:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v<<2)|2)
		return append(buf, tmp[:]...)
	default:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], v<<2|3)
		return append(buf, tmp[:]...)
	}
}

// readCompressedInt decodes a compressed integer starting at buf[0],
// returning the value and the number of bytes consumed. It reports ok=false
// if buf is too short for the width its first byte declares.
func readCompressedInt(buf []byte) (v uint64, n int, ok bool) {
	if len(buf) < 1 {
		return 0, 0, false
	}
	switch buf[0] & 0x3 {
	case 0:
		return uint64(buf[0]) >> 2, 1, true
	case 1:
		if len(buf) < 2 {
			return 0, 0, false
		}
		return uint64(binary.LittleEndian.Uint16(buf)) >> 2, 2, true
	case 2:
		if len(buf) < 4 {
			return 0, 0, false
		}
		return uint64(binary.LittleEndian.Uint32(buf)) >> 2, 4, true
	default:
		if len(buf) < 8 {
			return 0, 0, false
		}
		return binary.LittleEndian.Uint64(buf) >> 2, 8, true
	}
}
