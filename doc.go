// Copyright 2020-2025 Buf Technologies, Inc.
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

// Package polyglot maps Go struct types to and from four structured-data
// wire formats — JSON, BEVE, CBOR and MessagePack — off one reflection-
// derived field table, so a type only has to describe itself once.
//
// Marshal and Unmarshal cover the common case of encoding or decoding a
// whole value. For large BEVE documents where decoding everything up
// front is wasteful, NewLazyDocument exposes a navigator that only
// materializes the fields a caller actually reads. OrderedMap is a
// standalone insertion-ordered, robin-hood-hashed dictionary usable
// independently of any codec.
//
// # Support status
//
// Boolean typed arrays in BEVE are a reserved-but-unimplemented wire
// shape (see internal/beve): the encoder writes a []bool as a generic
// array, and decoding or skipping a boolean typed-array tag fails with a
// syntax error.
package polyglot
