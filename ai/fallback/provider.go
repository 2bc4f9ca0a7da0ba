package fallback

import (
	"log/slog"

	"github.com/poiesic/docmind/ai"
)

// Provider implements ai.AIProvider with the deterministic local
// services. It never fails to construct and never touches the network.
type Provider struct {
	embedder *Embedder
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewProvider creates a provider backed entirely by local computation.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider() ai.AIProvider {
	return &Provider{
		embedder: newEmbedder(),
		analyzer: newAnalyzer(),
		logger:   slog.Default().With("component", "fallback-provider"),
	}
}

// Embedder returns the deterministic embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Analyzer returns the rule-based analysis service.
func (p *Provider) Analyzer() ai.DocumentAnalyzer {
	return p.analyzer
}

// Close is a no-op; the fallback services hold no resources.
func (p *Provider) Close() error {
	return nil
}
