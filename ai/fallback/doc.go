// Package fallback provides deterministic local implementations of the
// ai interfaces, used when no AI provider is reachable.
//
// The embedder hashes bag-of-words features into a fixed 256-dimension
// unit vector; the analyzer combines frequency-based extractive
// summaries, keyword classification, regex entity extraction and a
// small sentiment lexicon. Identical input always produces identical
// output, which makes degraded-mode behavior reproducible in tests and
// in production incident review.
//
// Fallback vectors and provider vectors are separate embedding schemes
// and are never compared with each other.
package fallback
