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

package dict_test

import (
	"hash/fnv"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/dict"
)

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// TestInsertionOrder covers the unordered-erase edge case: insertion order is preserved
// regardless of hashing, and unordered-erase swaps the last element in.
func TestInsertionOrder(t *testing.T) {
	t.Parallel()

	d := dict.New[string, int](hashString)
	d.Insert("zebra", 1)
	d.Insert("apple", 2)
	d.Insert("mango", 3)
	d.Insert("banana", 4)

	require.Equal(t, []string{"zebra", "apple", "mango", "banana"}, d.Keys())

	require.True(t, d.UnorderedEraseKey("zebra"))
	require.Equal(t, []string{"banana", "apple", "mango"}, d.Keys())

	for _, k := range []string{"banana", "apple", "mango"} {
		require.True(t, d.Contains(k))
	}
	require.False(t, d.Contains("zebra"))
}

func TestOrderedErasePreservesOrder(t *testing.T) {
	t.Parallel()

	d := dict.New[string, int](hashString)
	d.Insert("a", 1)
	d.Insert("b", 2)
	d.Insert("c", 3)
	d.Insert("d", 4)

	require.True(t, d.EraseKey("b"))
	require.Equal(t, []string{"a", "c", "d"}, d.Keys())
	v, ok := d.Find("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestInsertOrAssignKeepsPosition(t *testing.T) {
	t.Parallel()

	d := dict.New[string, int](hashString)
	d.Insert("a", 1)
	d.Insert("b", 2)
	d.InsertOrAssign("a", 100)

	require.Equal(t, []string{"a", "b"}, d.Keys())
	v, ok := d.Find("a")
	require.True(t, ok)
	require.Equal(t, 100, v)
}

func TestTryEmplaceSkipsBuildOnDuplicate(t *testing.T) {
	t.Parallel()

	d := dict.New[string, int](hashString)
	d.Insert("a", 1)

	called := false
	d.TryEmplace("a", func() int {
		called = true
		return 999
	})
	require.False(t, called)
	v, _ := d.Find("a")
	require.Equal(t, 1, v)
}

// TestRandomInsertErase is a randomized stress test of invariant 5: after
// arbitrary insert/erase sequences, the dictionary's contents match a
// reference map and the probe-distance invariant holds.
func TestRandomInsertErase(t *testing.T) {
	t.Parallel()

	d := dict.New[int, int](func(k int) uint64 { return uint64(k) * 2654435761 })
	ref := map[int]int{}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		k := rng.IntN(500)
		switch rng.IntN(3) {
		case 0, 1:
			d.Insert(k, k*10)
			if _, ok := ref[k]; !ok {
				ref[k] = k * 10
			}
		case 2:
			d.UnorderedEraseKey(k)
			delete(ref, k)
		}
	}

	require.Equal(t, len(ref), d.Len())
	for k, v := range ref {
		got, ok := d.Find(k)
		require.True(t, ok, "missing key %d", k)
		require.Equal(t, v, got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	d := dict.New[string, int](hashString)
	d.Insert("a", 1)

	clone := d.Clone()
	clone.Insert("b", 2)

	require.False(t, d.Contains("b"))
	require.True(t, clone.Contains("b"))
}
