// Package extract converts uploaded files of the supported formats
// into plain text suitable for analysis, chunking and search. Each
// format has its own extractor; the Registry dispatches on the format
// detected by the security scanner, never on the file extension.
package extract
