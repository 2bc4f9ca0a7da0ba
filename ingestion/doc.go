// Package ingestion turns uploaded files into indexed documents: the
// security scan gates the bytes, extraction produces text, analysis
// and embedding run in parallel, and chunks land in the vector index
// before the document record is marked indexed. Byte-identical uploads
// deduplicate against the content-hash index.
package ingestion
