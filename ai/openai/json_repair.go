// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import "strings"

// repairJSON fixes a malformation some models produce in JSON output:
// an object key missing its opening quote, as in `{summary": "..."}`.
// Keys are re-quoted when a bare word after { or , runs into `":`.
func repairJSON(s string) string {
	runes := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	for i := 0; i < len(runes); {
		ch := runes[i]
		out.WriteRune(ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
			out.WriteRune(runes[i])
			i++
		}
		if i >= len(runes) || runes[i] == '"' || !isLetter(runes[i]) {
			continue
		}

		start := i
		for i < len(runes) && (isLetter(runes[i]) || runes[i] == '_' || runes[i] == ' ') {
			i++
		}

		if i+1 < len(runes) && runes[i] == '"' && runes[i+1] == ':' {
			// Bare key with only a closing quote; insert the opening
			// quote and trim stray spaces at the key's edges.
			out.WriteRune('"')
			out.WriteString(strings.TrimSpace(string(runes[start:i])))
		} else {
			out.WriteString(string(runes[start:i]))
		}
	}

	return out.String()
}
