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

package beve

import (
	"github.com/polyglot-codec/polyglot/internal/wire"
)

// skipValue advances past exactly one tagged BEVE value starting at
// buf[off], without materializing it, and reports the wire.Kind it
// belongs to. It is the one routine progressive scanning, indexed-view
// construction, and unknown-key handling during decode all share — the
// "skip engine" components other formats don't need because they're
// self-delimiting text, but a binary format with variable-width numbers
// must implement once and reuse everywhere.
func skipValue(buf []byte, off int, ctx *wire.Context) (next int, kind wire.Kind, err error) {
	if !ctx.Enter(off) {
		return off, wire.KindInvalid, ctx.Err()
	}
	defer ctx.Exit()

	if off >= len(buf) {
		ctx.Fail(wire.UnexpectedEnd, off, "truncated value")
		return off, wire.KindInvalid, ctx.Err()
	}
	tag := buf[off]
	off++

	switch major(tag) {
	case majNullBool:
		if boolFlag(tag) {
			return off, wire.KindBool, nil
		}
		return off, wire.KindNull, nil

	case majNumber:
		n := byteCounts[countIdx(tag)]
		if off+n > len(buf) {
			ctx.Fail(wire.UnexpectedEnd, off, "truncated number")
			return off, wire.KindInvalid, ctx.Err()
		}
		return off + n, numberKind(sub2(tag)), nil

	case majString:
		next, err = skipLengthPrefixed(buf, off, ctx)
		return next, wire.KindString, err

	case majObject:
		return skipObject(buf, off, tag, ctx)

	case majTypedArray:
		return skipTypedArray(buf, off, tag, ctx)

	case majGenericArray:
		return skipGenericArray(buf, off, ctx)

	case majExtension:
		return skipExtension(buf, off, tag, ctx)

	default:
		ctx.Fail(wire.InvalidHeader, off-1, "reserved major type")
		return off, wire.KindInvalid, ctx.Err()
	}
}

func numberKind(numType byte) wire.Kind {
	switch numType {
	case numFloat:
		return wire.KindFloat
	case numSigned:
		return wire.KindInt
	case numUint:
		return wire.KindUint
	default:
		return wire.KindInvalid
	}
}

// skipLengthPrefixed skips a compressed-int length N followed by N raw
// bytes, as used by strings and object/array element counts' payloads.
func skipLengthPrefixed(buf []byte, off int, ctx *wire.Context) (int, error) {
	n, w, ok := readCompressedInt(buf[off:])
	if !ok {
		ctx.Fail(wire.UnexpectedEnd, off, "truncated length prefix")
		return off, ctx.Err()
	}
	off += w
	end := off + int(n)
	if end < off || end > len(buf) {
		ctx.Fail(wire.UnexpectedEnd, off, "string/bytes payload runs past end of buffer")
		return off, ctx.Err()
	}
	return end, nil
}

func skipObject(buf []byte, off int, tag byte, ctx *wire.Context) (int, wire.Kind, error) {
	count, w, ok := readCompressedInt(buf[off:])
	if !ok {
		ctx.Fail(wire.UnexpectedEnd, off, "truncated object count")
		return off, wire.KindInvalid, ctx.Err()
	}
	off += w

	keyKind := sub2(tag)
	for i := uint64(0); i < count; i++ {
		var err error
		switch keyKind {
		case keyString:
			off, err = skipLengthPrefixed(buf, off, ctx)
		case keySigned, keyUint:
			_, w, kok := readCompressedInt(buf[off:])
			if !kok {
				ctx.Fail(wire.UnexpectedEnd, off, "truncated object key")
				return off, wire.KindInvalid, ctx.Err()
			}
			off += w
		default:
			ctx.Fail(wire.InvalidHeader, off, "invalid object key kind")
			return off, wire.KindInvalid, ctx.Err()
		}
		if err != nil {
			return off, wire.KindInvalid, err
		}
		off, _, err = skipValue(buf, off, ctx)
		if err != nil {
			return off, wire.KindInvalid, err
		}
	}

	if keyKind == keyString {
		return off, wire.KindStringMap, nil
	}
	return off, wire.KindIntMap, nil
}

func skipTypedArray(buf []byte, off int, tag byte, ctx *wire.Context) (int, wire.Kind, error) {
	count, w, ok := readCompressedInt(buf[off:])
	if !ok {
		ctx.Fail(wire.UnexpectedEnd, off, "truncated array count")
		return off, wire.KindInvalid, ctx.Err()
	}
	off += w

	numType := sub2(tag)
	idx := countIdx(tag)

	if numType != numOther {
		n := byteCounts[idx] * int(count)
		end := off + n
		if end < off || end > len(buf) {
			ctx.Fail(wire.UnexpectedEnd, off, "numeric typed array payload runs past end of buffer")
			return off, wire.KindInvalid, ctx.Err()
		}
		return end, wire.KindNumericArray, nil
	}

	switch idx {
	case stringArrayCountIdx:
		for i := uint64(0); i < count; i++ {
			var err error
			off, err = skipLengthPrefixed(buf, off, ctx)
			if err != nil {
				return off, wire.KindInvalid, err
			}
		}
		return off, wire.KindSequence, nil
	case boolArrayCountIdx:
		ctx.Fail(wire.SyntaxError, off, "boolean typed array is reserved and not implemented")
		return off, wire.KindInvalid, ctx.Err()
	default:
		ctx.Fail(wire.InvalidHeader, off, "invalid typed array sub-kind")
		return off, wire.KindInvalid, ctx.Err()
	}
}

func skipGenericArray(buf []byte, off int, ctx *wire.Context) (int, wire.Kind, error) {
	count, w, ok := readCompressedInt(buf[off:])
	if !ok {
		ctx.Fail(wire.UnexpectedEnd, off, "truncated array count")
		return off, wire.KindInvalid, ctx.Err()
	}
	off += w

	for i := uint64(0); i < count; i++ {
		var err error
		off, _, err = skipValue(buf, off, ctx)
		if err != nil {
			return off, wire.KindInvalid, err
		}
	}
	return off, wire.KindSequence, nil
}

func skipExtension(buf []byte, off int, tag byte, ctx *wire.Context) (int, wire.Kind, error) {
	switch extSubID(tag) {
	case extDelimiter:
		return off, wire.KindInvalid, nil

	case extVariant:
		_, w, ok := readCompressedInt(buf[off:])
		if !ok {
			ctx.Fail(wire.UnexpectedEnd, off, "truncated variant tag index")
			return off, wire.KindInvalid, ctx.Err()
		}
		off += w
		next, _, err := skipValue(buf, off, ctx)
		return next, wire.KindVariant, err

	case extMatrix:
		// header byte (bit 0: row/column-major), extents-as-a-value, then
		// values-as-a-value — not a flat rank-prefixed dimension list.
		if off >= len(buf) {
			ctx.Fail(wire.UnexpectedEnd, off, "truncated matrix header")
			return off, wire.KindInvalid, ctx.Err()
		}
		off++
		off, _, err := skipValue(buf, off, ctx)
		if err != nil {
			return off, wire.KindInvalid, err
		}
		next, _, err := skipValue(buf, off, ctx)
		return next, wire.KindMatrix, err

	case extComplex:
		if off >= len(buf) {
			ctx.Fail(wire.UnexpectedEnd, off, "truncated complex header")
			return off, wire.KindInvalid, ctx.Err()
		}
		header := buf[off]
		off++
		n := byteCounts[countIdx(header)]
		count := uint64(1)
		if header&0x1 != 0 {
			var w int
			var ok bool
			count, w, ok = readCompressedInt(buf[off:])
			if !ok {
				ctx.Fail(wire.UnexpectedEnd, off, "truncated complex array count")
				return off, wire.KindInvalid, ctx.Err()
			}
			off += w
		}
		end := off + int(count)*2*n
		if end < off || end > len(buf) {
			ctx.Fail(wire.UnexpectedEnd, off, "truncated complex payload")
			return off, wire.KindInvalid, ctx.Err()
		}
		return end, wire.KindComplex, nil

	default:
		ctx.Fail(wire.InvalidHeader, off, "unknown extension sub-id")
		return off, wire.KindInvalid, ctx.Err()
	}
}
