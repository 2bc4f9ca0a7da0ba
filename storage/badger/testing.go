package badger

import "github.com/poiesic/docmind/storage"

// NewMemoryStores creates an in-memory backend with a document
// repository and vector index on top of it. Intended for tests; the
// caller closes the backend when done.
func NewMemoryStores() (storage.DocumentRepository, storage.VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}
	index, err := NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}
	return repo, index, backend, nil
}
