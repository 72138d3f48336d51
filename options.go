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

package polyglot

import "github.com/polyglot-codec/polyglot/internal/wire"

// WriteOption and ReadOption are plain structs wrapping a closure rather
// than interfaces, so that applying a chain of options on the encode/
// decode hot path doesn't cost an interface dispatch per option.

// WriteOption configures Marshal.
type WriteOption struct{ apply func(*wire.WriteOptions) }

// ReadOption configures Unmarshal.
type ReadOption struct{ apply func(*wire.ReadOptions) }

// WithPrettify enables indented, human-readable JSON output.
func WithPrettify(pretty bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.Prettify = pretty }}
}

// WithIndent sets the indent width and character used when WithPrettify
// is set. The default is two spaces.
func WithIndent(width int, ch byte) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.IndentWidth = width; o.IndentChar = ch }}
}

// WithMinified(true) turns off WithPrettify, so JSON output carries no
// optional whitespace (the default output already has none).
// WithMinified(false) changes nothing.
func WithMinified(minified bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) {
		if minified {
			o.Prettify = false
		}
	}}
}

// WithSkipNullMembers omits struct fields holding a nil pointer,
// interface, slice or map from encoded output; other zero values are
// still written.
func WithSkipNullMembers(skip bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.SkipNullMembers = skip }}
}

// WithStructsAsArrays encodes structs positionally (by declared field
// order) instead of as name-keyed maps/objects. Supported by BEVE,
// MSGPACK and CBOR; JSON ignores it (JSON objects are always keyed).
func WithStructsAsArrays(asArrays bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.StructsAsArrays = asArrays }}
}

// WithBoolsAsNumbers encodes booleans as 0/1 instead of true/false in
// JSON output.
func WithBoolsAsNumbers(asNumbers bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.BoolsAsNumbers = asNumbers }}
}

// WithFloatMaxWritePrecision caps JSON float output at float32 precision:
// each float is written with the shortest digits that identify it once
// rounded to float32.
func WithFloatMaxWritePrecision(max bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.FloatMaxWritePrecision = max }}
}

// WithRaw sets the Raw write option. None of the encoders reads it, so it
// does not change any output.
func WithRaw(raw bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.Raw = raw }}
}

// WithNDJSON sets the NDJSON write option. No encoder reads it: Marshal
// writes one document either way, with no newline framing.
func WithNDJSON(ndjson bool) WriteOption {
	return WriteOption{func(o *wire.WriteOptions) { o.NDJSON = ndjson }}
}

// WithErrorOnUnknownKeys controls whether an unrecognized object/map key
// is a decode error (the default) or silently skipped.
func WithErrorOnUnknownKeys(fail bool) ReadOption {
	return ReadOption{func(o *wire.ReadOptions) { o.ErrorOnUnknownKeys = fail }}
}

// WithErrorOnMissingKeys sets the ErrorOnMissingKeys read option. No
// decoder checks it: fields absent from the input are left unchanged and
// never cause an error.
func WithErrorOnMissingKeys(fail bool) ReadOption {
	return ReadOption{func(o *wire.ReadOptions) { o.ErrorOnMissingKeys = fail }}
}

// WithComments allows JSON input to contain `//` and `/* */` comments.
func WithComments(allow bool) ReadOption {
	return ReadOption{func(o *wire.ReadOptions) { o.Comments = allow }}
}

// WithPartialRead allows a document to contain trailing bytes after the
// value being decoded, instead of treating them as an error.
func WithPartialRead(partial bool) ReadOption {
	return ReadOption{func(o *wire.ReadOptions) { o.PartialRead = partial }}
}

// WithMaxDepth overrides the recursion depth guard (default 256).
func WithMaxDepth(depth int) ReadOption {
	return ReadOption{func(o *wire.ReadOptions) { o.MaxDepth = depth }}
}

func buildWriteOptions(opts []WriteOption) wire.WriteOptions {
	o := wire.DefaultWriteOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

func buildReadOptions(opts []ReadOption) wire.ReadOptions {
	o := wire.DefaultReadOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}
