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

package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// AnalyzerHost is the base URL for the chat/analysis service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	AnalyzerHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// AnalyzerModel is the model identifier to use for document analysis.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	AnalyzerModel string

	// AnalysisWindow is the maximum number of characters of extracted
	// text handed to the analyzer model. Longer documents are truncated
	// at a sentence boundary.
	// Default: 12000
	AnalysisWindow int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithAnalyzerHost sets the analyzer service host URL.
func WithAnalyzerHost(host string) ConfigOption {
	return func(c *Config) {
		c.AnalyzerHost = host
	}
}

// WithHost sets both embedding and analyzer hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.AnalyzerHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAnalyzerModel sets the analyzer model identifier.
func WithAnalyzerModel(model string) ConfigOption {
	return func(c *Config) {
		c.AnalyzerModel = model
	}
}

// WithAnalysisWindow sets the analyzer truncation window in characters.
func WithAnalysisWindow(chars int) ConfigOption {
	return func(c *Config) {
		c.AnalysisWindow = chars
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and analyzer use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		AnalyzerHost:   defaultHost,
		EmbeddingModel: "embeddinggemma",
		AnalyzerModel:  "qwen2.5:3b",
		AnalysisWindow: 12000,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.AnalyzerHost != "" && !strings.HasSuffix(c.AnalyzerHost, "/v1") {
		c.AnalyzerHost = strings.TrimSuffix(c.AnalyzerHost, "/")
		c.AnalyzerHost = c.AnalyzerHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.AnalyzerHost == "" {
		return errors.New("ai config: AnalyzerHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.AnalyzerModel == "" {
		return errors.New("ai config: AnalyzerModel is required")
	}
	if c.AnalysisWindow < 1000 {
		return errors.New("ai config: AnalysisWindow must be at least 1000 characters")
	}
	return nil
}
