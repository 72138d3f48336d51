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

package json

import "reflect"

// RawMessage holds a pre-encoded JSON value verbatim, for the raw
// passthrough extension: a field of this type is copied
// byte-for-byte on write and captured byte-for-byte (not parsed) on read.
type RawMessage []byte

var rawJSONType = reflect.TypeOf(RawMessage(nil))
