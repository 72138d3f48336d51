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

// Package keyhash implements the key-hash selector: given a
// record's field names, choose the cheapest strategy that can resolve a
// wire key to a field index.
//
// A systems-language implementation would pick these strategies at compile
// time via templates. Go has no equivalent compile-time reflection, so
// Select runs once per record type, the first time internal/schema
// compiles it, and the result is cached on the Descriptor.
//
// The front-N-bytes mixing function below uses the same rotate-xor-
// multiply mixing step and constant as fxhash, adapted to plain
// []byte/string input instead of unsafe pointer walks over raw memory.
package keyhash

// Strategy resolves a wire key string to a field index.
type Strategy interface {
	// Lookup returns the field index for key, or (-1, false) if key does
	// not name a surfaced field.
	Lookup(key string) (int, bool)
}

// Select deterministically picks a Strategy for the given, already-renamed
// and alias-expanded, field keys (duplicates are not expected; callers
// must ensure keys are unique within a record).
func Select(keys []string) Strategy {
	switch {
	case len(keys) == 0:
		return emptyStrategy{}
	case len(keys) == 1:
		return singleStrategy{key: keys[0]}
	}

	if s, ok := byLength(keys); ok {
		return s
	}
	if s, ok := byUniqueByte(keys); ok {
		return s
	}
	if s, ok := byFrontBytesHash(keys); ok {
		return s
	}
	return newFullHash(keys)
}

// emptyStrategy is used for zero-field records.
type emptyStrategy struct{}

func (emptyStrategy) Lookup(string) (int, bool) { return -1, false }

// singleStrategy is used for one-field records: a direct equality check.
type singleStrategy struct {
	key string
}

func (s singleStrategy) Lookup(key string) (int, bool) {
	if key == s.key {
		return 0, true
	}
	return -1, false
}
