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

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Analyzer implements ai.DocumentAnalyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client llms.Model
	window int
	logger *slog.Logger
}

// documentAnalysis matches the JSON structure requested from the LLM.
type documentAnalysis struct {
	ExecutiveSummary string   `json:"executive_summary"`
	DetailedSummary  string   `json:"detailed_summary"`
	KeyPoints        []string `json:"key_points"`
	KeyInsights      []string `json:"key_insights"`
	Category         string   `json:"category"`
	Confidence       float32  `json:"confidence"`
	Entities         struct {
		People        []string `json:"people"`
		Organizations []string `json:"organizations"`
		Dates         []string `json:"dates"`
		Amounts       []string `json:"amounts"`
		Technologies  []string `json:"technologies"`
	} `json:"entities"`
	Sentiment struct {
		Polarity  float32 `json:"polarity"`
		Magnitude float32 `json:"magnitude"`
	} `json:"sentiment"`
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.AnalyzerHost),
		openai.WithToken("none"),
		openai.WithModel(config.AnalyzerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		window: config.AnalysisWindow,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new document analyzer using the provided configuration.
//
// Returns ai.DocumentAnalyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.DocumentAnalyzer, error) {
	return newAnalyzer(config)
}

// AnalyzeDocument asks the model for summaries, a classification,
// entities and sentiment in one JSON-mode call. Text statistics are
// computed locally from the full text, not by the model.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) (*core.AnalysisResult, error) {
	stats := core.ComputeStats(text)
	excerpt := truncateAtSentence(scrubText(text), a.window)

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildAnalysisPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(excerpt)},
		},
	}

	// Try up to 3 times in case of malformed JSON.
	var parsed documentAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate analysis", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			a.logger.Debug("no choices returned from model")
			return nil, core.ErrAnalysisUnavailable
		}

		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analyzer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		a.logger.Error("failed to parse analyzer response after retries", "err", lastErr)
		return nil, lastErr
	}

	result := &core.AnalysisResult{
		ExecutiveSummary: strings.TrimSpace(parsed.ExecutiveSummary),
		DetailedSummary:  strings.TrimSpace(parsed.DetailedSummary),
		KeyPoints:        parsed.KeyPoints,
		KeyInsights:      parsed.KeyInsights,
		Category:         core.ParseDocumentType(parsed.Category),
		Confidence:       clamp01(parsed.Confidence),
		Entities: core.EntitySet{
			People:        parsed.Entities.People,
			Organizations: parsed.Entities.Organizations,
			Dates:         parsed.Entities.Dates,
			Amounts:       parsed.Entities.Amounts,
			Technologies:  parsed.Entities.Technologies,
		},
		Sentiment: core.Sentiment{
			Polarity:  clampRange(parsed.Sentiment.Polarity, -1, 1),
			Magnitude: clamp01(parsed.Sentiment.Magnitude),
		},
		Stats: stats,
	}

	a.logger.Debug("document analyzed",
		"category", result.Category.String(),
		"confidence", result.Confidence,
		"keyPoints", len(result.KeyPoints))
	return result, nil
}

func clamp01(v float32) float32 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
