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

// Package wire holds the format-independent plumbing shared by all four
// codecs: the error taxonomy, the read/write context, and the buffer
// (sink/source) traits. Keeping this in one place means the four codec
// packages (json, beve, cbor, msgpack) implement these rules once each
// instead of four times over.
package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the exhaustive taxonomy of error categories a codec can
// report.
type ErrorKind int

const (
	// None indicates no error has occurred.
	None ErrorKind = iota

	// Structural errors.
	SyntaxError
	InvalidHeader
	InvalidBody
	VersionMismatch
	InvalidPartialKey
	UnexpectedEnd
	ExceededMaxRecursiveDepth

	// Lookup errors.
	UnknownKey
	MethodNotFound
	KeyNotFound

	// Semantic errors.
	GetWrongType
	ParseError
	NoReadInput

	// Output errors.
	InsufficientOutputBuffer
	ExceededStaticArraySize

	// Configuration errors.
	MissingKey
	FileOpenFailure
)

var errorKindNames = [...]string{
	None:                      "none",
	SyntaxError:               "syntax_error",
	InvalidHeader:             "invalid_header",
	InvalidBody:               "invalid_body",
	VersionMismatch:           "version_mismatch",
	InvalidPartialKey:         "invalid_partial_key",
	UnexpectedEnd:             "unexpected_end",
	ExceededMaxRecursiveDepth: "exceeded_max_recursive_depth",
	UnknownKey:                "unknown_key",
	MethodNotFound:            "method_not_found",
	KeyNotFound:               "key_not_found",
	GetWrongType:              "get_wrong_type",
	ParseError:                "parse_error",
	NoReadInput:               "no_read_input",
	InsufficientOutputBuffer:  "insufficient_output_buffer",
	ExceededStaticArraySize:   "exceeded_static_array_size",
	MissingKey:                "missing_key",
	FileOpenFailure:           "file_open_failure",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(errorKindNames) {
		return "unknown_error_kind"
	}
	return errorKindNames[k]
}

// Error is a single codec failure: a kind, the byte offset it occurred at,
// and an optional custom message.
//
// Error carries a github.com/pkg/errors cause created by NewError; printing
// that cause (the result of Unwrap) with %+v shows the stack trace of the
// NewError call.
type Error struct {
	Kind      ErrorKind
	ByteIndex int
	Message   string
	cause     error
}

// NewError constructs an Error, capturing a stack trace via pkg/errors.
func NewError(kind ErrorKind, byteIndex int, message string) *Error {
	e := &Error{Kind: kind, ByteIndex: byteIndex, Message: message}
	e.cause = errors.New(e.Error())
	return e
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

// Unwrap returns the stack-carrying pkg/errors cause, so errors.Is/errors.As
// walk from e to it through the standard errors.Unwrap protocol.
func (e *Error) Unwrap() error {
	return e.cause
}

// LineCol re-scans buf to translate a byte offset into a 1-based line and
// column, for rendering "line:col: <kind> [ message ]".
func LineCol(buf []byte, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(buf) {
		offset = len(buf)
	}
	for _, b := range buf[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Render formats e as "line:col: <kind> [ message ]" against the original
// source buffer.
func (e *Error) Render(buf []byte) string {
	line, col := LineCol(buf, e.ByteIndex)
	s := fmt.Sprintf("%d:%d: %s", line, col, e.Kind.String())
	if e.Message != "" {
		s += " [ " + e.Message + " ]"
	}
	return s
}
