package core

import "strings"

// wordsPerMinute is the reading speed used for the reading time estimate.
const wordsPerMinute = 200

// ComputeStats derives word count, sentence count and an estimated
// reading time from extracted text. Sentence counting is heuristic;
// a terminator followed by whitespace or end of text closes a sentence.
func ComputeStats(text string) DocumentStats {
	words := len(strings.Fields(text))

	sentences := 0
	inSentence := false
	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '.', '!', '?':
			if inSentence && (i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
				sentences++
				inSentence = false
			}
		case ' ', '\n', '\t', '\r':
		default:
			inSentence = true
		}
	}
	if inSentence {
		sentences++
	}

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if words == 0 {
		minutes = 0
	}
	return DocumentStats{
		WordCount:          words,
		SentenceCount:      sentences,
		ReadingTimeMinutes: minutes,
	}
}
