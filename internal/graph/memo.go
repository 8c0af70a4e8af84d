package graph

import (
	"github.com/Paintersrp/citegraph/internal/cache"
	"github.com/Paintersrp/citegraph/internal/paper"
)

// Memo caches derived structures per corpus revision. A revision must change
// whenever the paper or relationship slices change.
type Memo struct {
	adjacency *cache.LRUCache[uint64, *Adjacency]
	papers    *cache.LRUCache[uint64, map[string]paper.Paper]
}

func NewMemo(size int) *Memo {
	return &Memo{
		adjacency: cache.NewLRUCache[uint64, *Adjacency](size),
		papers:    cache.NewLRUCache[uint64, map[string]paper.Paper](size),
	}
}

func (m *Memo) Adjacency(revision uint64, rels []paper.Relationship) *Adjacency {
	return m.adjacency.GetOrCompute(revision, func() *Adjacency {
		return BuildAdjacency(rels)
	})
}

func (m *Memo) Connections(
	revision uint64,
	target string,
	papers []paper.Paper,
	rels []paper.Relationship,
) []Connection {
	byID := m.papers.GetOrCompute(revision, func() map[string]paper.Paper {
		return paper.Index(papers)
	})
	return resolveConnections(target, byID, rels)
}

func (m *Memo) Bridges(
	revision uint64,
	target string,
	papers []paper.Paper,
	rels []paper.Relationship,
	limit int,
	weights Weights,
) []Bridge {
	return recommendBridges(target, papers, m.Adjacency(revision, rels), limit, weights)
}
