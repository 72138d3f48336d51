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

import "reflect"

// Extension is a passthrough value for a MessagePack ext type a codec
// doesn't interpret natively (every type besides -1/timestamp): Code is
// the ext-type byte, Data is the raw payload.
//
// It lives in internal/wire, rather than internal/msgpack or the root
// package, so that internal/schema can recognize it by exact reflect.Type
// equality without an import cycle (schema is imported by msgpack;
// msgpack and the root package both type-alias to this definition).
type Extension struct {
	Code int8
	Data []byte
}

// ExtensionType is the reflect.Type of Extension, cached once for the
// schema/codec type-equality checks.
var ExtensionType = reflect.TypeOf(Extension{})
