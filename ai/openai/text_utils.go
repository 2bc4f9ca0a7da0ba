package openai

import "strings"

// scrubText drops control characters that confuse chat templates while
// keeping the line structure the model uses to find section breaks.
func scrubText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// truncateAtSentence cuts text to at most limit characters, preferring
// the last sentence terminator in the window so the model never sees a
// half sentence.
func truncateAtSentence(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	window := s[:limit]
	cut := -1
	for _, term := range []string{". ", ".\n", "! ", "? "} {
		if i := strings.LastIndex(window, term); i > cut {
			cut = i
		}
	}
	if cut > 0 {
		return window[:cut+1]
	}
	if i := strings.LastIndexByte(window, ' '); i > 0 {
		return window[:i]
	}
	return window
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
