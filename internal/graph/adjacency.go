package graph

import (
	"sort"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// PairKey identifies an unordered pair of paper ids.
type PairKey struct {
	A string
	B string
}

// MakePairKey orders the ids so (a, b) and (b, a) share a key.
func MakePairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Adjacency holds the undirected view of a relationship list: neighbor sets
// and the strongest relationship seen between each pair.
type Adjacency struct {
	Neighbors map[string]map[string]struct{}
	Strengths map[PairKey]int
}

// BuildAdjacency records both endpoints of every relationship, including
// endpoints that do not resolve to a known paper.
func BuildAdjacency(rels []paper.Relationship) *Adjacency {
	adj := &Adjacency{
		Neighbors: make(map[string]map[string]struct{}),
		Strengths: make(map[PairKey]int, len(rels)),
	}
	for _, rel := range rels {
		adj.link(rel.From, rel.To)
		adj.link(rel.To, rel.From)

		key := MakePairKey(rel.From, rel.To)
		if current, ok := adj.Strengths[key]; !ok || rel.Strength > current {
			adj.Strengths[key] = rel.Strength
		}
	}
	return adj
}

func (a *Adjacency) link(from, to string) {
	set, ok := a.Neighbors[from]
	if !ok {
		set = make(map[string]struct{})
		a.Neighbors[from] = set
	}
	set[to] = struct{}{}
}

// Adjacent reports whether any relationship joins x and y.
func (a *Adjacency) Adjacent(x, y string) bool {
	_, ok := a.Neighbors[x][y]
	return ok
}

// Strength returns the maximum strength between x and y, 0 when unconnected.
func (a *Adjacency) Strength(x, y string) int {
	return a.Strengths[MakePairKey(x, y)]
}

// Degree returns the number of distinct neighbors of id.
func (a *Adjacency) Degree(id string) int {
	return len(a.Neighbors[id])
}

// NeighborIDs returns the sorted neighbor ids of id.
func (a *Adjacency) NeighborIDs(id string) []string {
	set := a.Neighbors[id]
	ids := make([]string, 0, len(set))
	for n := range set {
		ids = append(ids, n)
	}
	sort.Strings(ids)
	return ids
}

// SharedNeighbors returns the sorted ids adjacent to both x and y.
func (a *Adjacency) SharedNeighbors(x, y string) []string {
	small, large := a.Neighbors[x], a.Neighbors[y]
	if len(large) < len(small) {
		small, large = large, small
	}
	shared := make([]string, 0)
	for n := range small {
		if _, ok := large[n]; ok {
			shared = append(shared, n)
		}
	}
	sort.Strings(shared)
	return shared
}
