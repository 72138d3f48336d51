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

package schema

import (
	"math/rand/v2"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/polyglot-codec/polyglot/internal/stats"
	"github.com/polyglot-codec/polyglot/internal/xsync"
)

var (
	cache xsync.Map[reflect.Type, *Descriptor]
	group singleflight.Group

	seedOnce sync.Once
	seedVal  uint64

	// FieldCountMean tracks the average number of surfaced fields across
	// every type Compile has run on, for callers that want a cheap
	// complexity signal without wiring up a real metrics pipeline.
	FieldCountMean stats.Mean
)

// processSeed returns a value generated once per process and reused for
// the lifetime of the program, standing in for a compile-time-known hash
// seed a systems language could bake in statically.
func processSeed() uint64 {
	seedOnce.Do(func() { seedVal = rand.Uint64() })
	return seedVal
}

// CompileCached returns the cached Descriptor for t, compiling it (exactly
// once, even under concurrent callers) on first use via a
// singleflight.Group. The cache itself is a generic xsync.Map wrapper
// rather than a bare sync.Map, so callers never type-assert the cached
// value back out.
func CompileCached(t reflect.Type) (*Descriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if v, ok := cache.Load(t); ok {
		return v, nil
	}

	v, err, _ := group.Do(t.String(), func() (any, error) {
		if v, ok := cache.Load(t); ok {
			return v, nil
		}
		d, err := Compile(t)
		if err != nil {
			return nil, err
		}
		cache.Store(t, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}
