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

// Package storage provides the storage abstraction layer for docmind.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types to
// enforce abstraction:
//
//	repo, err := badger.NewDocumentRepository(backend) // storage.DocumentRepository
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
//
// # Architecture
//
//   - DocumentRepository: document records, content-hash dedup index,
//     lifecycle recovery, collection statistics
//   - VectorIndex: chunk storage and cosine similarity search
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	docs, err := badger.NewDocumentRepository(backend)
//	index, err := badger.NewVectorIndex(backend)
//
// Use in tests with in-memory storage:
//
//	docs, index, backend, err := badger.NewMemoryStores()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support. Pass context.Background() for operations without
// specific timeout requirements.
package storage
