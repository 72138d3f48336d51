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
	"encoding/binary"
	"time"
)

// extTimestamp is the MessagePack timestamp extension type, -1, per the
// spec's "timestamp ext type". It has three wire sizes depending
// on what's needed to represent the value exactly.
const extTimestamp = -1

// encodeTimestamp picks the 32/64/96-bit form: 32-bit when there are no
// nanoseconds and the seconds fit unsigned 32 bits, 64-bit when seconds
// fit 34 bits unsigned, 96-bit (signed 64-bit seconds, explicit 32-bit
// nanoseconds) otherwise.
func encodeTimestamp(t time.Time) []byte {
	sec := t.Unix()
	nsec := uint32(t.Nanosecond())

	if nsec == 0 && sec >= 0 && sec <= 0xffffffff {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(sec))
		return buf[:]
	}
	if sec >= 0 && sec < (1<<34) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(nsec)<<34|uint64(sec))
		return buf[:]
	}
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], nsec)
	binary.BigEndian.PutUint64(buf[4:12], uint64(sec))
	return buf
}

func decodeTimestamp(data []byte) (time.Time, bool) {
	switch len(data) {
	case 4:
		sec := binary.BigEndian.Uint32(data)
		return time.Unix(int64(sec), 0).UTC(), true
	case 8:
		v := binary.BigEndian.Uint64(data)
		nsec := v >> 34
		sec := v & ((1 << 34) - 1)
		return time.Unix(int64(sec), int64(nsec)).UTC(), true
	case 12:
		nsec := binary.BigEndian.Uint32(data[0:4])
		sec := int64(binary.BigEndian.Uint64(data[4:12]))
		return time.Unix(sec, int64(nsec)).UTC(), true
	default:
		return time.Time{}, false
	}
}
