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

package fallback

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
)

const (
	executiveSentences = 2
	detailedSentences  = 6
	maxKeyPoints       = 7
	maxKeyInsights     = 5
)

// Analyzer implements ai.DocumentAnalyzer with deterministic rules:
// frequency-based extractive summaries, keyword classification, regex
// entity extraction and lexicon sentiment. The same text always yields
// the same result.
type Analyzer struct {
	summarizer *summarizer
	logger     *slog.Logger
}

// NewAnalyzer creates the deterministic local analyzer.
//
// Returns ai.DocumentAnalyzer interface to enforce abstraction.
func NewAnalyzer() ai.DocumentAnalyzer {
	return newAnalyzer()
}

func newAnalyzer() *Analyzer {
	return &Analyzer{
		summarizer: newSummarizer(),
		logger:     slog.Default().With("component", "fallback-analyzer"),
	}
}

// AnalyzeDocument produces the full analysis without any network access.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) (*core.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := a.summarizer.rank(text)
	category, confidence := classify(text)

	result := &core.AnalysisResult{
		ExecutiveSummary: topInOrder(ranked, executiveSentences),
		DetailedSummary:  topInOrder(ranked, detailedSentences),
		KeyPoints:        keyPoints(ranked),
		KeyInsights:      keyInsights(text),
		Category:         category,
		Confidence:       confidence,
		Entities: core.EntitySet{
			People:        uniqueMatches(peoplePattern, text),
			Organizations: uniqueMatches(orgPattern, text),
			Dates:         uniqueMatches(datePattern, text),
			Amounts:       amounts(text),
			Technologies:  uniqueMatches(techPattern, text),
		},
		Sentiment: sentiment(text),
		Stats:     core.ComputeStats(text),
	}

	a.logger.Debug("document analyzed",
		"category", category.String(),
		"confidence", confidence,
		"keyPoints", len(result.KeyPoints))
	return result, nil
}

// classify scores each category by how many of its keywords appear in
// the text. The highest score wins; a tie for first place or no hits
// at all leaves the document unclassified.
func classify(text string) (core.DocumentType, float32) {
	lower := strings.ToLower(text)

	best := core.DocumentTypeUnclassified
	bestScore, secondScore := 0, 0
	for _, category := range []core.DocumentType{
		core.DocumentTypeFinancial,
		core.DocumentTypeTechnical,
		core.DocumentTypeStrategic,
		core.DocumentTypeLegal,
		core.DocumentTypeOperational,
	} {
		score := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		switch {
		case score > bestScore:
			secondScore = bestScore
			bestScore = score
			best = category
		case score == bestScore:
			secondScore = score
		case score > secondScore:
			secondScore = score
		}
	}

	if bestScore == 0 || bestScore == secondScore {
		return core.DocumentTypeUnclassified, 0
	}

	confidence := float32(bestScore) / float32(len(categoryKeywords[best]))
	if confidence > 0.9 {
		confidence = 0.9
	}
	return best, confidence
}

// keyPoints takes the highest-ranked sentences as individual points,
// in document order.
func keyPoints(ranked []rankedSentence) []string {
	n := maxKeyPoints
	if n > len(ranked) {
		n = len(ranked)
	}
	selected := make([]rankedSentence, n)
	copy(selected, ranked[:n])
	sortByIndex(selected)
	out := make([]string, 0, n)
	for _, r := range selected {
		out = append(out, r.text)
	}
	return out
}

// keyInsights collects sentences containing recommendation or
// forward-looking cues.
func keyInsights(text string) []string {
	var out []string
	for _, sent := range sentencePattern.FindAllString(text, -1) {
		lower := strings.ToLower(sent)
		for _, cue := range insightCues {
			if strings.Contains(lower, cue) {
				out = append(out, strings.TrimSpace(sent))
				break
			}
		}
		if len(out) == maxKeyInsights {
			break
		}
	}
	return out
}

// sentiment counts lexicon hits. Polarity weighs positive against
// negative hits; magnitude is the share of non-neutral hits.
func sentiment(text string) core.Sentiment {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)
	neu := countHits(lower, neutralWords)

	total := pos + neg + neu
	if total == 0 {
		return core.Sentiment{}
	}

	var polarity float32
	if pos+neg > 0 {
		polarity = float32(pos-neg) / float32(pos+neg)
	}
	return core.Sentiment{
		Polarity:  polarity,
		Magnitude: float32(pos+neg) / float32(total),
	}
}

func countHits(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// amounts merges monetary figures and percentages into one list.
func amounts(text string) []string {
	merged := uniqueMatches(moneyPattern, text)
	for _, pct := range uniqueMatches(pctPattern, text) {
		if len(merged) == maxEntitiesPerKind {
			break
		}
		merged = append(merged, pct)
	}
	return merged
}

func sortByIndex(rs []rankedSentence) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].idx < rs[j].idx })
}
