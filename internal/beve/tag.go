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

// Package beve implements the BEVE binary codec, and the lazy
// zero-copy navigator over it. Every value begins with a tag byte
// whose bit layout is fixed by the BEVE format; tag.go implements that layout,
// varint.go the compressed-integer length prefix, skip.go the recursive
// "advance past one value without decoding it" subroutine shared by
// progressive scanning and indexed-view construction, and lazy.go the
// Document/View/IndexedView types themselves.
package beve

// Major types occupy bits 0-2 of the tag byte.
const (
	majNullBool     = 0
	majNumber       = 1
	majString       = 2
	majObject       = 3
	majTypedArray   = 4
	majGenericArray = 5
	_majReserved6   = 6
	majExtension    = 7
)

// Number-type sub-field (bits 3-4) for majNumber/majTypedArray.
const (
	numFloat  = 0
	numSigned = 1
	numUint   = 2
	numOther  = 3 // string/bool, for typed arrays only
)

// Key-kind sub-field (bits 3-4) for majObject.
const (
	keyString = 0
	keySigned = 1
	keyUint   = 2
)

// Extension sub-id (bits 3-7) for majExtension.
const (
	extDelimiter = 0
	extVariant   = 1
	extMatrix    = 2
	extComplex   = 3
)

// countIdx values (bits 5-7) index this table to get a byte count, for
// majNumber and majTypedArray tags.
var byteCounts = [4]int{1, 2, 4, 8}

func countIndex(n int) byte {
	switch n {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		panic("beve: invalid byte count")
	}
}

func major(tag byte) byte      { return tag & 0x7 }
func sub2(tag byte) byte       { return (tag >> 3) & 0x3 }
func countIdx(tag byte) byte   { return (tag >> 5) & 0x7 }
func extSubID(tag byte) byte   { return (tag >> 3) & 0x1f }
func boolFlag(tag byte) bool   { return tag&0x8 != 0 }
func boolValue(tag byte) bool  { return tag&0x10 != 0 }

func makeTag(maj byte, sub2 byte, idx byte) byte {
	return maj | sub2<<3 | idx<<5
}

func nullTag() byte { return majNullBool }

func boolTag(v bool) byte {
	t := byte(majNullBool) | 0x8
	if v {
		t |= 0x10
	}
	return t
}

func numberTag(numType byte, width int) byte {
	return makeTag(majNumber, numType, countIndex(width))
}

func stringTag() byte { return majString }

func objectTag(keyKind byte) byte { return majObject | keyKind<<3 }

func typedArrayTag(numType byte, width int) byte {
	return makeTag(majTypedArray, numType, countIndex(width))
}

// The string typed array and BEVE's boolean typed array share
// numType==numOther and are told apart by countIdx: countIdx==0 is
// reserved for bool (unimplemented, so it has no tag constructor) and
// countIdx==1 marks a string array (typedStringArrayTag).
const (
	boolArrayCountIdx   = 0
	stringArrayCountIdx = 1
)

func typedStringArrayTag() byte {
	return makeTag(majTypedArray, numOther, stringArrayCountIdx)
}

func genericArrayTag() byte { return majGenericArray }

func extensionTag(subID byte) byte { return majExtension | subID<<3 }
