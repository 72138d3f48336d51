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

package json

import (
	"reflect"
	"time"
)

// timeValue is time.Time; aliased so the rest of the file can name the
// type without importing "time" everywhere a type switch needs it.
type timeValue = time.Time

var timeType = reflect.TypeOf(time.Time{})

// timestampLayout is the ISO-8601/RFC 3339 profile timestamps are written
// in: fractional seconds only when non-zero (trailing zeros dropped), "Z"
// for UTC and an explicit ±HH:MM offset for any other zone.
const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// parseTimestamp accepts RFC 3339 ("Z" or a ±HH:MM offset) and the same
// form with a colon-less ±HHMM offset.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse("2006-01-02T15:04:05.999999999-0700", s); err2 == nil {
			return t2, nil
		}
	}
	return t, err
}
