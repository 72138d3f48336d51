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

import (
	"reflect"

	"github.com/polyglot-codec/polyglot/internal/beve"
	"github.com/polyglot-codec/polyglot/internal/cbor"
	"github.com/polyglot-codec/polyglot/internal/json"
	"github.com/polyglot-codec/polyglot/internal/msgpack"
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// Marshal encodes v as format, applying opts.
func Marshal[T any](v T, format Format, opts ...WriteOption) ([]byte, error) {
	options := buildWriteOptions(opts)
	return marshalValue(reflect.ValueOf(v), format, options)
}

func marshalValue(rv reflect.Value, format Format, options wire.WriteOptions) ([]byte, error) {
	// The scratch buffer every format grows its encoding into is pooled
	// (internal/wire's sync2.Pool wrapper): Marshal is commonly called in a
	// tight loop, and the buffer's backing array is the one allocation
	// per-call this avoids repeating.
	scratch, drop := wire.AcquireBuffer()
	defer drop()

	switch format {
	case JSON:
		sink := wire.WrapGrowSink(*scratch)
		enc := &json.Encoder{Options: options}
		if err := enc.Encode(sink, rv); err != nil {
			return nil, wrapJSONErr(err)
		}
		return append([]byte(nil), sink.Bytes()...), nil
	case BEVE:
		enc := &beve.Encoder{Options: options}
		buf, err := enc.Encode(*scratch, rv)
		if err != nil {
			return nil, wrapBeveErr(err)
		}
		return append([]byte(nil), buf...), nil
	case CBOR:
		enc := &cbor.Encoder{Options: options}
		buf, err := enc.Encode(*scratch, rv)
		if err != nil {
			return nil, wrapCborErr(err)
		}
		return append([]byte(nil), buf...), nil
	case MSGPACK:
		enc := &msgpack.Encoder{Options: options}
		buf, err := enc.Encode(*scratch, rv)
		if err != nil {
			return nil, wrapMsgpackErr(err)
		}
		return append([]byte(nil), buf...), nil
	default:
		return nil, &Error{Kind: GetWrongType, Message: "polyglot: unknown format"}
	}
}

func wrapJSONErr(err error) error {
	if e, ok := err.(*wire.Error); ok {
		return wrapError(e)
	}
	return err
}

func wrapBeveErr(err error) error    { return wrapJSONErr(err) }
func wrapCborErr(err error) error    { return wrapJSONErr(err) }
func wrapMsgpackErr(err error) error { return wrapJSONErr(err) }
