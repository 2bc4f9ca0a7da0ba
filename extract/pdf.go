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

package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/poiesic/docmind/core"
)

// pdfExtractor pulls text show operators out of each page's content
// stream. Pages whose fonts use non-standard encodings may yield
// little or no text; those pages produce a warning rather than fail
// the whole document.
type pdfExtractor struct {
	logger *slog.Logger
}

func (e *pdfExtractor) Extract(raw []byte) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf: %v", core.ErrExtractionFailed, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: validating pdf: %v", core.ErrExtractionFailed, err)
	}

	var (
		out      strings.Builder
		breaks   []int
		warnings []string
	)
	for page := 1; page <= ctx.PageCount; page++ {
		rd, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: unreadable content stream: %v", page, err))
			continue
		}
		content, err := io.ReadAll(rd)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: reading content stream: %v", page, err))
			continue
		}
		pageText := textFromContentStream(content)
		if strings.TrimSpace(pageText) == "" {
			warnings = append(warnings, fmt.Sprintf("page %d: no extractable text", page))
			continue
		}
		if out.Len() > 0 {
			breaks = append(breaks, out.Len())
		}
		out.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}

	return &Result{Text: out.String(), Breaks: breaks, Warnings: warnings}, nil
}

// textFromContentStream walks a decoded page content stream and
// collects the operands of the text show operators Tj, ', " and TJ.
// Positioning operators that start a new line emit a newline so that
// sentence detection downstream keeps working.
func textFromContentStream(content []byte) string {
	var (
		out     strings.Builder
		pending []string
		pos     int
	)

	newline := func() {
		s := out.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for pos < len(content) {
		c := content[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0:
			pos++
		case c == '%':
			for pos < len(content) && content[pos] != '\n' {
				pos++
			}
		case c == '(':
			s, next := parseLiteralString(content, pos)
			pending = append(pending, s)
			pos = next
		case c == '<':
			if pos+1 < len(content) && content[pos+1] == '<' {
				pos = skipDictionary(content, pos)
			} else {
				s, next := parseHexString(content, pos)
				pending = append(pending, s)
				pos = next
			}
		case c == '[' || c == ']' || c == '{' || c == '}':
			pos++
		case c == '/':
			pos++
			for pos < len(content) && !isDelimiter(content[pos]) {
				pos++
			}
		default:
			start := pos
			for pos < len(content) && !isDelimiter(content[pos]) {
				pos++
			}
			switch string(content[start:pos]) {
			case "Tj", "TJ":
				for _, s := range pending {
					out.WriteString(s)
				}
				pending = nil
			case "'", "\"":
				newline()
				for _, s := range pending {
					out.WriteString(s)
				}
				pending = nil
			case "Td", "TD", "T*", "ET":
				newline()
				pending = nil
			case "BT":
				pending = nil
			default:
				// Operand or unrelated operator. String operands only
				// survive until the operator that consumes them.
				if len(pending) > 0 && isOperator(content[start:pos]) {
					pending = nil
				}
			}
			if pos == start {
				pos++
			}
		}
	}
	return decodeShownText(out.String())
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// isOperator reports whether a token is an operator rather than a
// numeric operand.
func isOperator(token []byte) bool {
	if len(token) == 0 {
		return false
	}
	for _, c := range token {
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			continue
		}
		return true
	}
	return false
}

// parseLiteralString reads a ( ... ) string starting at pos and
// returns the decoded text and the position after the closing paren.
func parseLiteralString(content []byte, pos int) (string, int) {
	var (
		buf   bytes.Buffer
		depth = 0
	)
	pos++ // opening paren
	for pos < len(content) {
		c := content[pos]
		switch c {
		case '\\':
			pos++
			if pos >= len(content) {
				return buf.String(), pos
			}
			esc := content[pos]
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b', 'f':
				// ignored
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					val := int(esc - '0')
					for i := 0; i < 2 && pos+1 < len(content); i++ {
						nc := content[pos+1]
						if nc < '0' || nc > '7' {
							break
						}
						val = val*8 + int(nc-'0')
						pos++
					}
					buf.WriteByte(byte(val))
				} else {
					buf.WriteByte(esc)
				}
			}
			pos++
		case '(':
			depth++
			buf.WriteByte(c)
			pos++
		case ')':
			if depth == 0 {
				return buf.String(), pos + 1
			}
			depth--
			buf.WriteByte(c)
			pos++
		default:
			buf.WriteByte(c)
			pos++
		}
	}
	return buf.String(), pos
}

// parseHexString reads a < ... > string starting at pos.
func parseHexString(content []byte, pos int) (string, int) {
	var digits []byte
	pos++ // opening angle
	for pos < len(content) && content[pos] != '>' {
		c := content[pos]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		pos++
	}
	if pos < len(content) {
		pos++ // closing angle
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var buf bytes.Buffer
	for i := 0; i+1 < len(digits); i += 2 {
		buf.WriteByte(hexVal(digits[i])<<4 | hexVal(digits[i+1]))
	}
	return buf.String(), pos
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// skipDictionary advances past a balanced << ... >> dictionary,
// including any strings inside it.
func skipDictionary(content []byte, pos int) int {
	depth := 0
	for pos < len(content) {
		switch {
		case pos+1 < len(content) && content[pos] == '<' && content[pos+1] == '<':
			depth++
			pos += 2
		case pos+1 < len(content) && content[pos] == '>' && content[pos+1] == '>':
			depth--
			pos += 2
			if depth == 0 {
				return pos
			}
		case content[pos] == '(':
			_, pos = parseLiteralString(content, pos)
		default:
			pos++
		}
	}
	return pos
}

// decodeShownText maps raw shown bytes to readable text. Standard
// encodings are close enough to Latin-1 for keyword matching; bytes
// outside the printable range are dropped.
func decodeShownText(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n' || c == '\t':
			buf.WriteByte(c)
		case c >= 0x20 && c < 0x7F:
			buf.WriteByte(c)
		case c >= 0xA0:
			buf.WriteRune(rune(c))
		}
	}
	return buf.String()
}
