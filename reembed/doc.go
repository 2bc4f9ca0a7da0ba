// Package reembed migrates documents embedded with the deterministic
// fallback scheme to provider embeddings once a provider is reachable.
//
// This package supports batch processing of documents, progress
// tracking, and retry logic with exponential backoff. Chunk vectors
// are replaced before the document's scheme flips, so search never
// sees a document whose record and vectors disagree.
package reembed
