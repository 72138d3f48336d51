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

package schema

import "strings"

// tagInfo is the parsed form of a `poly:"..."` struct tag.
type tagInfo struct {
	name     string
	skip     bool
	aliases  []string
	omitNull bool
	methods  bool
}

// parseTag parses a poly struct tag. An empty tag is valid and means
// "use the Go field name, no options".
func parseTag(tag string) tagInfo {
	var info tagInfo
	if tag == "" {
		return info
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		info.skip = true
		return info
	}
	if parts[0] != "" {
		info.name = parts[0]
	}
	for _, opt := range parts[1:] {
		switch {
		case opt == "hidden":
			info.skip = true
		case opt == "omitnull":
			info.omitNull = true
		case opt == "methods":
			info.methods = true
		case strings.HasPrefix(opt, "alias="):
			info.aliases = append(info.aliases, strings.TrimPrefix(opt, "alias="))
		}
	}
	return info
}
