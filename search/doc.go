// Package search ranks stored documents against natural-language
// queries. Each document's chunks were embedded under one scheme, and
// a query is embedded separately per scheme before scoring, so vectors
// from different schemes never meet. Results group matching chunks
// into per-document excerpts; an exact-word match earns a small boost.
package search
