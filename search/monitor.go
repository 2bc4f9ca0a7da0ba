package search

import "github.com/poiesic/docmind/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterCandidateSelection(scheme core.EmbeddingScheme, ids []core.ID)
	SchemeUnavailable(scheme core.EmbeddingScheme, err error)
	AfterVectorSearch(scheme core.EmbeddingScheme, hits int)
	VerbatimHit(id core.ID)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                             {}
func (n *noopMonitor) AfterCandidateSelection(_ core.EmbeddingScheme, _ []core.ID) {}
func (n *noopMonitor) SchemeUnavailable(_ core.EmbeddingScheme, _ error)          {}
func (n *noopMonitor) AfterVectorSearch(_ core.EmbeddingScheme, _ int)            {}
func (n *noopMonitor) VerbatimHit(_ core.ID)                                      {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                              {}
