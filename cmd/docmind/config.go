package main

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docmind/ai"
)

// AIConfig configures the OpenAI-compatible provider endpoints.
type AIConfig struct {
	Disabled       bool   `yaml:"disabled"`
	EmbeddingHost  string `yaml:"embedding_host"`
	AnalyzerHost   string `yaml:"analyzer_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	AnalyzerModel  string `yaml:"analyzer_model"`
	AnalysisWindow int    `yaml:"analysis_window"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	DB string   `yaml:"db"`
	AI AIConfig `yaml:"ai"`
}

// loadConfig reads a YAML config. A missing file yields defaults.
func loadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// aiOptions converts the YAML section into ai.Config options, with all
// unset fields keeping their defaults.
func (c *AIConfig) aiOptions() []ai.ConfigOption {
	var opts []ai.ConfigOption
	if c.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.EmbeddingHost))
	}
	if c.AnalyzerHost != "" {
		opts = append(opts, ai.WithAnalyzerHost(c.AnalyzerHost))
	}
	if c.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.EmbeddingModel))
	}
	if c.AnalyzerModel != "" {
		opts = append(opts, ai.WithAnalyzerModel(c.AnalyzerModel))
	}
	if c.AnalysisWindow > 0 {
		opts = append(opts, ai.WithAnalysisWindow(c.AnalysisWindow))
	}
	return opts
}
