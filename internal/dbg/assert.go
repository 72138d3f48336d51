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

//go:build !poly_debug

package dbg

// Assert panics with a formatted message if cond is false.
//
// Under the poly_debug build tag this performs the check; without it, the
// body is a no-op, matching a common debug/release split.
func Assert(cond bool, format string, args ...any) {}

// Enabled reports whether assertions are compiled in.
const Enabled = false
