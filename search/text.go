package search

import (
	"strings"
	"unicode"
)

// stopwords excluded when testing for verbatim query matches.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, w := range fields {
		if _, stop := stopwords[w]; !stop {
			words = append(words, w)
		}
	}
	return words
}

// containsAllQueryWords reports whether every content word of the query
// appears somewhere in the document text.
func containsAllQueryWords(document, query string) bool {
	queryWords := contentWords(query)
	if len(queryWords) == 0 {
		return false
	}

	seen := make(map[string]struct{})
	for _, w := range contentWords(document) {
		seen[w] = struct{}{}
	}
	for _, w := range queryWords {
		if _, ok := seen[w]; !ok {
			return false
		}
	}
	return true
}
