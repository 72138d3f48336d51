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

package cbor

import "reflect"

// typedArrayTag is RFC 8746's tag number for one (element kind, width,
// endianness) combination. Only the fixed-width integer and IEEE-float
// forms are listed; the "unspecified length" (tag 63) and bigint variants
// are out of scope.
func typedArrayTag(elemKind reflect.Kind) (tag uint64, width int, ok bool) {
	switch elemKind {
	case reflect.Uint8:
		return 64, 1, true // uint8, tag 64
	case reflect.Int8:
		return 72, 1, true // sint8, tag 72
	case reflect.Uint16:
		return 69, 2, true // uint16, little endian, tag 69
	case reflect.Int16:
		return 77, 2, true // sint16, little endian, tag 77
	case reflect.Uint32, reflect.Uint:
		return 70, 4, true // uint32, little endian, tag 70
	case reflect.Int32, reflect.Int:
		return 78, 4, true // sint32, little endian, tag 78
	case reflect.Uint64:
		return 71, 8, true // uint64, little endian, tag 71
	case reflect.Int64:
		return 79, 8, true // sint64, little endian, tag 79
	case reflect.Float32:
		return 85, 4, true // float32, little endian, tag 85
	case reflect.Float64:
		return 86, 8, true // float64, little endian, tag 86
	default:
		return 0, 0, false
	}
}

// typedArrayKindFor maps an RFC 8746 tag number back to the element kind
// and byte width it encodes, for decode.
func typedArrayKindFor(tag uint64) (elemKind reflect.Kind, width int, ok bool) {
	switch tag {
	case 64:
		return reflect.Uint8, 1, true
	case 72:
		return reflect.Int8, 1, true
	case 69:
		return reflect.Uint16, 2, true
	case 77:
		return reflect.Int16, 2, true
	case 70:
		return reflect.Uint32, 4, true
	case 78:
		return reflect.Int32, 4, true
	case 71:
		return reflect.Uint64, 8, true
	case 79:
		return reflect.Int64, 8, true
	case 85:
		return reflect.Float32, 4, true
	case 86:
		return reflect.Float64, 8, true
	default:
		return reflect.Invalid, 0, false
	}
}
