// Package corpus serves consistent, cached views of a paper library and
// routes edits through its store.
package corpus

import (
	"time"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// Snapshot is an immutable view of the library at one revision.
type Snapshot struct {
	Revision      uint64
	Papers        []paper.Paper
	Relationships []paper.Relationship
	LoadedAt      time.Time
}

func (s Snapshot) Clone() Snapshot {
	papers := make([]paper.Paper, len(s.Papers))
	for i, p := range s.Papers {
		papers[i] = p.Clone()
	}
	s.Papers = papers
	s.Relationships = append([]paper.Relationship(nil), s.Relationships...)
	return s
}

func (s Snapshot) Paper(id string) (paper.Paper, bool) {
	for _, p := range s.Papers {
		if p.ID == id {
			return p, true
		}
	}
	return paper.Paper{}, false
}

// Relationship looks a relationship up by id.
func (s Snapshot) Relationship(id string) (paper.Relationship, bool) {
	for _, rel := range s.Relationships {
		if rel.ID == id {
			return rel, true
		}
	}
	return paper.Relationship{}, false
}

// IDs returns a membership set of the paper ids.
func (s Snapshot) IDs() map[string]bool {
	ids := make(map[string]bool, len(s.Papers))
	for _, p := range s.Papers {
		ids[p.ID] = true
	}
	return ids
}

// Tags returns every distinct tag in the library with its paper count.
func (s Snapshot) Tags() map[string]int {
	counts := make(map[string]int)
	for _, p := range s.Papers {
		for tag := range p.TagSet() {
			counts[tag]++
		}
	}
	return counts
}
