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

// Unmarshal decodes data as format into a fresh T, applying opts.
func Unmarshal[T any](data []byte, format Format, opts ...ReadOption) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if err := unmarshalInto(data, format, rv, opts); err != nil {
		return out, err
	}
	return out, nil
}

// unmarshalInto is the reflection-level engine both Unmarshal and
// DecodeVariant funnel through, so a Variant alternative decodes with
// exactly the same option handling and error wrapping as a top-level
// Unmarshal call.
func unmarshalInto(data []byte, format Format, rv reflect.Value, opts []ReadOption) error {
	options := buildReadOptions(opts)
	switch format {
	case JSON:
		dec := &json.Decoder{Options: options}
		src := wire.NewSliceSource(data)
		if err := dec.Decode(src, rv); err != nil {
			return wrapJSONErr(err)
		}
		return nil
	case BEVE:
		dec := &beve.Decoder{Options: options}
		n, err := dec.Decode(data, 0, rv)
		if err != nil {
			return wrapBeveErr(err)
		}
		if !options.PartialRead && n != len(data) {
			return &Error{Kind: SyntaxError, ByteIndex: n, Message: "trailing bytes after value"}
		}
		return nil
	case CBOR:
		dec := &cbor.Decoder{Options: options}
		n, err := dec.Decode(data, 0, rv)
		if err != nil {
			return wrapCborErr(err)
		}
		if !options.PartialRead && n != len(data) {
			return &Error{Kind: SyntaxError, ByteIndex: n, Message: "trailing bytes after value"}
		}
		return nil
	case MSGPACK:
		dec := &msgpack.Decoder{Options: options}
		n, err := dec.Decode(data, 0, rv)
		if err != nil {
			return wrapMsgpackErr(err)
		}
		if !options.PartialRead && n != len(data) {
			return &Error{Kind: SyntaxError, ByteIndex: n, Message: "trailing bytes after value"}
		}
		return nil
	default:
		return &Error{Kind: GetWrongType, Message: "polyglot: unknown format"}
	}
}
