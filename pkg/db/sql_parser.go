/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"strings"
	"unicode"
)

// splitSQLStatements splits a migration file on top-level semicolons. Semicolons inside
// quoted strings, quoted identifiers, dollar-quoted bodies and comments are kept.
// Comments are dropped from the output.
func splitSQLStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      byte   // '\'' or '"' while inside a quoted token
		dollarTag  string // e.g. "$$" or "$fn$" while inside a dollar-quoted body
	)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}

		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]
		rest := content[i:]

		switch {
		case dollarTag != "":
			if strings.HasPrefix(rest, dollarTag) {
				current.WriteString(dollarTag)
				i += len(dollarTag) - 1
				dollarTag = ""

				continue
			}

			current.WriteByte(ch)

		case quote != 0:
			if ch == quote {
				quote = 0
			}

			current.WriteByte(ch)

		case strings.HasPrefix(rest, "--"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				i = len(content)

				continue
			}

			current.WriteByte('\n')
			i += end

		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				i = len(content)

				continue
			}

			i += end + 3

		case ch == '\'' || ch == '"':
			quote = ch
			current.WriteByte(ch)

		case ch == '$':
			if tag := dollarQuoteTag(rest); tag != "" {
				dollarTag = tag
				current.WriteString(tag)
				i += len(tag) - 1

				continue
			}

			current.WriteByte(ch)

		case ch == ';':
			flush()

		default:
			current.WriteByte(ch)
		}
	}

	flush()

	return statements
}

// dollarQuoteTag returns the opening tag at the start of s ("$$", "$body$"), or "".
// Positional parameters such as $1 are not tags.
func dollarQuoteTag(s string) string {
	for i := 1; i < len(s); i++ {
		ch := rune(s[i])

		switch {
		case ch == '$':
			return s[:i+1]
		case i == 1 && unicode.IsDigit(ch):
			return ""
		case ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch):
		default:
			return ""
		}
	}

	return ""
}
