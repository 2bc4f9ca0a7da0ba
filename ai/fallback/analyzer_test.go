package fallback

import (
	"context"
	"testing"

	"github.com/poiesic/docmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const financialReport = `Q4 revenue grew 12% year over year, driven by strong enterprise sales.
Acme Corp signed a three-year contract worth $4.5 million on January 15, 2025.
Profit margins improved across all regions. The board should consider
additional investment in the enterprise segment. John Smith presented
the earnings summary.`

func TestAnalyzeFinancialDocument(t *testing.T) {
	a := newAnalyzer()
	result, err := a.AnalyzeDocument(context.Background(), financialReport)
	require.NoError(t, err)

	assert.Equal(t, core.DocumentTypeFinancial, result.Category)
	assert.Greater(t, result.Confidence, float32(0))
	assert.NotEmpty(t, result.ExecutiveSummary)
	assert.NotEmpty(t, result.DetailedSummary)
	assert.NotEmpty(t, result.KeyPoints)

	assert.Contains(t, result.Entities.Organizations, "Acme Corp")
	assert.Contains(t, result.Entities.People, "John Smith")
	assert.Contains(t, result.Entities.Dates, "January 15, 2025")
	assert.Contains(t, result.Entities.Amounts, "12%")

	// "grew", "strong", "improvement" style wording reads positive.
	assert.Greater(t, result.Sentiment.Polarity, float32(0))

	assert.Greater(t, result.Stats.WordCount, 30)
	assert.GreaterOrEqual(t, result.Stats.SentenceCount, 4)
	assert.Equal(t, 1, result.Stats.ReadingTimeMinutes)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newAnalyzer()
	first, err := a.AnalyzeDocument(context.Background(), financialReport)
	require.NoError(t, err)
	second, err := a.AnalyzeDocument(context.Background(), financialReport)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClassify(t *testing.T) {
	t.Run("technical", func(t *testing.T) {
		cat, conf := classify("The system architecture uses a database behind an api gateway. Software development follows trunk-based flow.")
		assert.Equal(t, core.DocumentTypeTechnical, cat)
		assert.Greater(t, conf, float32(0))
	})

	t.Run("legal", func(t *testing.T) {
		cat, _ := classify("This agreement is a binding contract subject to compliance with the regulation and company policy.")
		assert.Equal(t, core.DocumentTypeLegal, cat)
	})

	t.Run("no keywords", func(t *testing.T) {
		cat, conf := classify("The quick brown fox jumps over the lazy dog.")
		assert.Equal(t, core.DocumentTypeUnclassified, cat)
		assert.Zero(t, conf)
	})

	t.Run("tie stays unclassified", func(t *testing.T) {
		cat, conf := classify("revenue policy")
		assert.Equal(t, core.DocumentTypeUnclassified, cat)
		assert.Zero(t, conf)
	})
}

func TestKeyInsights(t *testing.T) {
	insights := keyInsights("Numbers were flat. The board should consider a buyback. We plan to expand. Nothing else happened.")
	require.Len(t, insights, 2)
	assert.Contains(t, insights[0], "should")
	assert.Contains(t, insights[1], "plan")
}

func TestSentimentNeutralWithoutLexiconHits(t *testing.T) {
	s := sentiment("the quick brown fox")
	assert.Zero(t, s.Polarity)
	assert.Zero(t, s.Magnitude)
}

func TestSummarizerKeepsDocumentOrder(t *testing.T) {
	s := newSummarizer()
	text := "Alpha beta gamma delta. Beta gamma delta epsilon. Completely unrelated filler words here. Beta beta gamma gamma delta delta."
	ranked := s.rank(text)
	require.Len(t, ranked, 4)
	out := topInOrder(ranked, 2)
	// The two selected sentences appear in original order.
	first := ranked[0]
	second := ranked[1]
	lo, hi := first.text, second.text
	if first.idx > second.idx {
		lo, hi = hi, lo
	}
	assert.Contains(t, out, lo)
	assert.Contains(t, out, hi)
	assert.Less(t, indexOf(t, out, lo), indexOf(t, out, hi))
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	t.Fatalf("%q not found in %q", needle, haystack)
	return -1
}
