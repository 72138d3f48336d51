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

import "reflect"

// DecodeVariant decodes data as one of candidates' concrete types, trying
// each in order and returning the first one that decodes without error —
// first-match-wins, with no conflict-detection mode, matching the open
// question on variant disambiguation.
//
// A field typed as the bare Variant interface cannot be decoded
// automatically by Unmarshal: an empty interface has no concrete type for
// reflection to allocate without a registry telling it what to try. Route
// such a field's raw bytes here explicitly instead — for BEVE, a
// LazyView's Raw() method isolates exactly those bytes; for the other
// formats, isolate the field via a RawJSON member or a wrapper type.
func DecodeVariant(data []byte, format Format, candidates []func() Variant, opts ...ReadOption) (Variant, error) {
	var lastErr error
	for _, newFn := range candidates {
		zero := newFn()
		target := reflect.New(reflect.TypeOf(zero)).Elem()
		if err := unmarshalInto(data, format, target, opts); err != nil {
			lastErr = err
			continue
		}
		return target.Interface().(Variant), nil
	}
	if lastErr == nil {
		lastErr = &Error{Kind: KeyNotFound, Message: "no variant candidates provided"}
	}
	return nil, lastErr
}
