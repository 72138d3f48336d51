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
	"reflect"
	"time"
)

// timeType is time.Time. BEVE has no dedicated timestamp tag (no wire
// reserves majExtension sub-ids for variant/matrix/complex only), so a
// time.Time value is written as an ordinary BEVE string in an RFC 3339
// layout with a fixed nine-digit fraction and an explicit offset —
// keeping the wire representation readable by anything that can already
// decode a BEVE string, rather than inventing a fifth extension kind for
// one Go type.
var timeType = reflect.TypeOf(time.Time{})

const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
