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

// Context is the scratch object threaded through every codec call, per
// A single Context is used for one top-level write or read; it is not
// safe for concurrent use (a codec call is a pure function of
// (value, options, buffer, context), single-threaded per call).
type Context struct {
	// Error is the first error encountered, or None. Once set, every codec
	// must check it between field operations and halt further work.
	Error ErrorKind

	// ByteIndex is the read position (or write cursor) at which Error was
	// set.
	ByteIndex int

	// Message is an optional custom, user-printable message attached to
	// Error.
	Message string

	// IncluderError is a secondary error code reserved for includer-style
	// indirections (external collaborators, out of core scope; kept so the
	// field exists for callers that bridge to one).
	IncluderError ErrorKind

	// Indentation is a write-side indentation level. No codec reads or
	// updates it; the JSON encoder tracks its own nesting depth.
	Indentation int

	// Depth is the current recursion depth. Codecs increment/decrement this
	// around every nested encode/decode call and compare against
	// MaxDepth.
	Depth int

	// MaxDepth is the recursion depth guard. Zero means "use the
	// default of 256".
	MaxDepth int
}

// DefaultMaxDepth is the recursion depth guard applied when Context.MaxDepth
// is zero.
const DefaultMaxDepth = 256

// EffectiveMaxDepth returns c.MaxDepth, or DefaultMaxDepth if unset.
func (c *Context) EffectiveMaxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// Failed reports whether an error has already been recorded.
func (c *Context) Failed() bool { return c.Error != None }

// Fail records the first error. Subsequent calls are no-ops, matching the
// "first non-none error halts further writes/reads" propagation rule.
func (c *Context) Fail(kind ErrorKind, byteIndex int, message string) {
	if c.Error != None {
		return
	}
	c.Error = kind
	c.ByteIndex = byteIndex
	c.Message = message
}

// Err converts the context's terminal state into an *Error, or nil if no
// error was recorded.
func (c *Context) Err() *Error {
	if c.Error == None {
		return nil
	}
	return NewError(c.Error, c.ByteIndex, c.Message)
}

// Enter increments the recursion depth and reports whether the guard was
// tripped (Fail is also called in that case).
func (c *Context) Enter(byteIndex int) bool {
	c.Depth++
	if c.Depth > c.EffectiveMaxDepth() {
		c.Fail(ExceededMaxRecursiveDepth, byteIndex, "")
		return false
	}
	return true
}

// Exit decrements the recursion depth. Every successful Enter must be
// paired with an Exit, typically via defer.
func (c *Context) Exit() { c.Depth-- }
