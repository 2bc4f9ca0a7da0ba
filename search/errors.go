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

package search

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when a query embedder is not provided.
	ErrEmbedderRequired = errors.New("query embedder required")

	// ErrEmptyQuery is returned for a blank query string.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrDocumentNotIndexed is returned when context is requested from a
	// document that is not visible to search.
	ErrDocumentNotIndexed = errors.New("document not indexed")
)
