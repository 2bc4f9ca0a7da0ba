package extract

import (
	"strings"
	"unicode/utf8"
)

// txtExtractor passes UTF-8 through unchanged and decodes anything
// else as Latin-1, which never fails and preserves byte positions for
// western-European text.
type txtExtractor struct{}

func (e *txtExtractor) Extract(raw []byte) (*Result, error) {
	if utf8.Valid(raw) {
		return &Result{Text: string(raw)}, nil
	}
	return &Result{
		Text:     decodeLatin1(raw),
		Warnings: []string{"content is not valid UTF-8, decoded as Latin-1"},
	}, nil
}

func decodeLatin1(raw []byte) string {
	var buf strings.Builder
	buf.Grow(len(raw))
	for _, b := range raw {
		buf.WriteRune(rune(b))
	}
	return buf.String()
}
