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

import "github.com/polyglot-codec/polyglot/internal/sync2"

// bufPool recycles the scratch buffers Marshal grows its output into. The
// final result is always copied out of the pooled buffer before it is
// returned to a caller, since a pooled buffer can be handed to another
// Marshal call the moment drop is invoked.
var bufPool = sync2.Pool[[]byte]{
	New: func() *[]byte {
		b := make([]byte, 0, 256)
		return &b
	},
	Reset: func(b *[]byte) { *b = (*b)[:0] },
}

// AcquireBuffer returns a pooled, zero-length []byte with spare capacity
// and a function that returns it to the pool. Callers must finish copying
// out of the buffer before calling drop.
func AcquireBuffer() (buf *[]byte, drop func()) {
	return bufPool.Get()
}

// WrapGrowSink adapts a pooled buffer as a GrowSink, reusing its backing
// array instead of allocating a fresh one.
func WrapGrowSink(buf []byte) *GrowSink {
	return &GrowSink{buf: buf[:0]}
}
