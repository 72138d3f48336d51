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

package keyhash

import "math/bits"

// lengthStrategy dispatches on key length when every key has a distinct
// length.
type lengthStrategy struct {
	byLen map[int]int // length -> field index
}

func byLength(keys []string) (Strategy, bool) {
	byLen := make(map[int]int, len(keys))
	for i, k := range keys {
		if _, dup := byLen[len(k)]; dup {
			return nil, false
		}
		byLen[len(k)] = i
	}
	return lengthStrategy{byLen: byLen}, true
}

func (s lengthStrategy) Lookup(key string) (int, bool) {
	i, ok := s.byLen[len(key)]
	if !ok {
		return -1, false
	}
	return i, true
}

// uniqueByteStrategy dispatches on the byte at a fixed index j that is
// distinct across every key (and every key is at least j+1 bytes long).
type uniqueByteStrategy struct {
	index int
	byte  map[byte]int
	keys  []string
}

func byUniqueByte(keys []string) (Strategy, bool) {
	minLen := len(keys[0])
	for _, k := range keys[1:] {
		if len(k) < minLen {
			minLen = len(k)
		}
	}
	for j := 0; j < minLen; j++ {
		seen := make(map[byte]int, len(keys))
		ok := true
		for i, k := range keys {
			b := k[j]
			if _, dup := seen[b]; dup {
				ok = false
				break
			}
			seen[b] = i
		}
		if ok {
			return uniqueByteStrategy{index: j, byte: seen, keys: keys}, true
		}
	}
	return nil, false
}

func (s uniqueByteStrategy) Lookup(key string) (int, bool) {
	if len(key) <= s.index {
		return -1, false
	}
	i, ok := s.byte[key[s.index]]
	if !ok {
		return -1, false
	}
	if s.keys[i] != key {
		return -1, false
	}
	return i, true
}

// frontHashStrategy loads the first 4 or 8 bytes of a key (zero-padded if
// shorter), mixes them with fxMix, and indexes a power-of-two table built
// at Select time. Select tries up to 8 seeds for a collision-free table
// and rejects the strategy if none is found; Lookup confirms its single
// candidate with one string compare.
type frontHashStrategy struct {
	table []int // -1 for empty slots
	mask  uint64
	keys  []string
	width int // 4 or 8
	seed  uint64
}

const fxMixKey = 0x517cc1b727220a95

// fxMix is fxhash's rotate-xor-multiply mixing step, adapted to operate
// on a plain uint64 word instead of an unsafe-derived one.
func fxMix(seed, word uint64) uint64 {
	const rotate = 5
	hi, lo := bits.Mul64(bits.RotateLeft64(seed, rotate)^word, fxMixKey)
	return lo ^ hi
}

func loadFront(key string, width int) uint64 {
	var buf [8]byte
	copy(buf[:width], key)
	return uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
}

func byFrontBytesHash(keys []string) (Strategy, bool) {
	width := 4
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}
	if maxLen > 4 {
		width = 8
	}
	if maxLen > 8 {
		return nil, false
	}

	size := 1
	for size < len(keys)*2 {
		size *= 2
	}
	mask := uint64(size - 1)

	for attempt := 0; attempt < 8; attempt++ {
		seed := uint64(attempt)*0x9E3779B97F4A7C15 + 1
		table := make([]int, size)
		for i := range table {
			table[i] = -1
		}
		ok := true
		for i, k := range keys {
			h := fxMix(seed, loadFront(k, width)) & mask
			if table[h] != -1 {
				ok = false
				break
			}
			table[h] = i
		}
		if ok {
			return frontHashStrategy{table: table, mask: mask, keys: keys, width: width, seed: seed}, true
		}
	}
	return nil, false
}

func (s frontHashStrategy) Lookup(key string) (int, bool) {
	if len(key) > s.width {
		return -1, false
	}
	h := fxMix(s.seed, loadFront(key, s.width)) & s.mask
	i := s.table[h]
	if i < 0 || s.keys[i] != key {
		return -1, false
	}
	return i, true
}

// fullHashStrategy is the fallback: an open-addressed table, at least
// twice the key count, over an FNV-1a hash of the full key, probed
// linearly with a string compare at each occupied slot.
type fullHashStrategy struct {
	table []int
	mask  uint64
	keys  []string
	seed  uint64
}

func fnv1a(seed uint64, s string) uint64 {
	h := seed ^ 0xcbf29ce484222325
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 0x100000001b3
	}
	return h
}

func newFullHash(keys []string) Strategy {
	size := 1
	for size < len(keys)*2 {
		size *= 2
	}
	mask := uint64(size - 1)

	table := make([]int, size)
	for i := range table {
		table[i] = -1
	}
	const seed = 0
	for i, k := range keys {
		h := fnv1a(seed, k) & mask
		for table[h] != -1 {
			h = (h + 1) & mask
		}
		table[h] = i
	}
	return fullHashStrategy{table: table, mask: mask, keys: keys, seed: seed}
}

func (s fullHashStrategy) Lookup(key string) (int, bool) {
	h := fnv1a(s.seed, key) & s.mask
	for probes := 0; probes <= len(s.table); probes++ {
		i := s.table[h]
		if i < 0 {
			return -1, false
		}
		if s.keys[i] == key {
			return i, true
		}
		h = (h + 1) & s.mask
	}
	return -1, false
}
