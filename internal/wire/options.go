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

// WriteOptions holds every write-side knob, shared across all
// four codecs (each ignores the options that don't apply to it).
type WriteOptions struct {
	Prettify               bool
	IndentWidth            int
	IndentChar             byte
	SkipNullMembers        bool
	FloatMaxWritePrecision bool
	StructsAsArrays        bool
	BoolsAsNumbers         bool
	Raw                    bool
	NDJSON                 bool
}

// DefaultWriteOptions returns the zero-value defaults: no prettification,
// two-space indent (used only when Prettify is set), nothing else on.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{IndentWidth: 2, IndentChar: ' '}
}

// ReadOptions holds every read-side knob.
type ReadOptions struct {
	ErrorOnUnknownKeys bool
	ErrorOnMissingKeys bool
	Comments           bool
	Minified           bool
	PartialRead        bool
	AllowInvalidUTF8   bool
	MaxDepth           int
	NDJSON             bool
}

// DefaultReadOptions returns the documented defaults:
// error_on_unknown_keys=true, error_on_missing_keys=false.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{ErrorOnUnknownKeys: true}
}
