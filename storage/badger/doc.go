// Package badger provides BadgerDB-backed implementations of the
// storage interfaces: a document repository keyed by document ID with
// a secondary content-hash index, and a vector index holding document
// chunks under per-document key prefixes.
package badger
