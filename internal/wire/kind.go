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

// Kind identifies a value-algebra kind, the cross-format
// intermediate every codec understands.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindNumericArray // homogeneous numeric array
	KindSequence      // heterogeneous ordered sequence
	KindStringMap     // mapping with string keys
	KindIntMap        // mapping with integer keys
	KindVariant       // sum type
	KindOptional
	KindComplex
	KindMatrix
	KindTimestamp
	KindBitSet
	KindExtension // tagged extension (MSGPACK/CBOR)
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindNull:         "null",
	KindBool:         "bool",
	KindInt:          "int",
	KindUint:         "uint",
	KindFloat:        "float",
	KindString:       "string",
	KindBytes:        "bytes",
	KindNumericArray: "numeric_array",
	KindSequence:     "sequence",
	KindStringMap:    "string_map",
	KindIntMap:       "int_map",
	KindVariant:      "variant",
	KindOptional:     "optional",
	KindComplex:      "complex",
	KindMatrix:       "matrix",
	KindTimestamp:    "timestamp",
	KindBitSet:       "bitset",
	KindExtension:    "extension",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown_kind"
	}
	return kindNames[k]
}

// Width identifies the bit-width of a number within a Kind, used by both
// the homogeneous-array element descriptor and by BEVE's tag byte.
type Width int

const (
	Width8 Width = 1 << iota
	Width16
	Width32
	Width64
)

// Bytes returns the byte count for the width (1, 2, 4 or 8).
func (w Width) Bytes() int {
	switch w {
	case Width8:
		return 1
	case Width16:
		return 2
	case Width32:
		return 4
	case Width64:
		return 8
	default:
		return 0
	}
}
