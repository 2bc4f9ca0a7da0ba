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

// Package ai provides abstractions for the AI services used in Docmind.
//
// This package defines interfaces for text embeddings and document
// analysis. The business logic depends on these abstractions rather
// than concrete implementations, which keeps the processing pipeline
// testable and lets providers be swapped without touching callers.
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/fallback: Deterministic local implementation used when no
//     provider is reachable; same interfaces, no network access
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, fallback.NewProvider) return
// interface types to enforce abstraction. Mock constructors return
// concrete types so tests can inject behavior and make assertions.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Q4 revenue grew 12%")
//	result, err := provider.Analyzer().AnalyzeDocument(ctx, text)
package ai
