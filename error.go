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

package polyglot

import (
	"fmt"

	"github.com/polyglot-codec/polyglot/internal/wire"
)

// ErrorKind classifies what went wrong during a Marshal/Unmarshal call.
type ErrorKind = wire.ErrorKind

// The exported names of the error taxonomy, re-exported from internal/wire
// so callers never need to import it directly.
const (
	SyntaxError               = wire.SyntaxError
	InvalidHeader             = wire.InvalidHeader
	InvalidBody               = wire.InvalidBody
	VersionMismatch           = wire.VersionMismatch
	InvalidPartialKey         = wire.InvalidPartialKey
	UnexpectedEnd             = wire.UnexpectedEnd
	ExceededMaxRecursiveDepth = wire.ExceededMaxRecursiveDepth
	UnknownKey                = wire.UnknownKey
	MethodNotFound            = wire.MethodNotFound
	KeyNotFound               = wire.KeyNotFound
	GetWrongType              = wire.GetWrongType
	ParseError                = wire.ParseError
	NoReadInput               = wire.NoReadInput
	InsufficientOutputBuffer  = wire.InsufficientOutputBuffer
	ExceededStaticArraySize   = wire.ExceededStaticArraySize
	MissingKey                = wire.MissingKey
	FileOpenFailure           = wire.FileOpenFailure
)

// Error is the concrete error type every Marshal/Unmarshal failure wraps.
// It carries the offending byte offset and, via github.com/pkg/errors,
// a stack trace captured at the point the underlying codec first detected
// the failure — recoverable with errors.Unwrap/errors.As.
type Error struct {
	Kind      ErrorKind
	ByteIndex int
	Message   string

	cause *wire.Error
}

func wrapError(e *wire.Error) error {
	if e == nil {
		return nil
	}
	return &Error{Kind: e.Kind, ByteIndex: e.ByteIndex, Message: e.Message, cause: e}
}

// Error implements error, rendering "polyglot: <kind> at byte N" plus
// ": message" when there is one. Render gives the line:col form against
// the source buffer.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("polyglot: %s at byte %d: %s", e.Kind, e.ByteIndex, e.Message)
	}
	return fmt.Sprintf("polyglot: %s at byte %d", e.Kind, e.ByteIndex)
}

// Render formats e as "line:col: <kind> [ message ]" against the original
// source buffer, matching the line:col convention of internal/wire.Error.
func (e *Error) Render(buf []byte) string {
	return e.cause.Render(buf)
}

// Unwrap lets errors.Is/errors.As see through to the internal wire.Error,
// which in turn unwraps to a github.com/pkg/errors stack-carrying cause.
func (e *Error) Unwrap() error {
	return e.cause
}
