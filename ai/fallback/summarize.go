package fallback

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// summarizer ranks sentences by normalized token frequency, stopwords
// filtered. Selected sentences keep their original order so summaries
// read as prose.
type summarizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func newSummarizer() *summarizer {
	return &summarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

type rankedSentence struct {
	idx   int
	text  string
	score float64
}

// rank scores every sentence of text, highest first.
func (s *summarizer) rank(text string) []rankedSentence {
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []rankedSentence{{idx: 0, text: trimmed, score: 1}}
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	ranked := make([]rankedSentence, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		ranked[i] = rankedSentence{idx: i, text: strings.TrimSpace(sent), score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked
}

// topInOrder returns the n highest-scored sentences joined in their
// original document order.
func topInOrder(ranked []rankedSentence, n int) string {
	if n > len(ranked) {
		n = len(ranked)
	}
	selected := make([]rankedSentence, n)
	copy(selected, ranked[:n])
	sort.Slice(selected, func(i, j int) bool { return selected[i].idx < selected[j].idx })
	parts := make([]string, n)
	for i, r := range selected {
		parts[i] = r.text
	}
	return strings.Join(parts, " ")
}

func (s *summarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}
