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

package keyhash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyglot-codec/polyglot/internal/keyhash"
)

func TestSelectResolvesEveryKey(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{},
		{"only"},
		{"a", "bb", "ccc"},                      // length discriminator
		{"id", "ix", "in"},                     // unique byte index (index 1)
		{"name", "host", "port", "user"},       // unique byte index (index 0)
		{"ab", "cb", "name_one", "name_two"},   // front-bytes hash candidate
		{"name", "description", "hostname", "user_id_with_a_much_longer_tail"}, // distinct lengths: length discriminator
	}

	for _, keys := range cases {
		s := keyhash.Select(keys)
		for i, k := range keys {
			idx, ok := s.Lookup(k)
			require.True(t, ok, "key %q should resolve", k)
			require.Equal(t, i, idx)
		}
		idx, ok := s.Lookup("not-a-real-key-at-all")
		require.False(t, ok)
		require.Equal(t, -1, idx)
	}
}

func TestSelectManyKeysFallsBackToFullHash(t *testing.T) {
	t.Parallel()

	keys := make([]string, 200)
	for i := range keys {
		keys[i] = string(rune('a'+i%26)) + string(rune('A'+(i/26)%26)) + "_field"
	}
	s := keyhash.Select(keys)
	for i, k := range keys {
		idx, ok := s.Lookup(k)
		require.True(t, ok)
		require.Equal(t, i, idx)
	}
}
