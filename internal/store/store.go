// Package store defines the persistence boundary for a paper library. The
// graph core never talks to a Store directly; it receives the slices a
// Store returns.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Paintersrp/citegraph/internal/paper"
)

var (
	ErrPaperNotFound        = errors.New("paper not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrPaperExists          = errors.New("paper already exists")
	ErrSelfRelationship     = errors.New("a paper cannot relate to itself")
)

// Kind names a Store backend in configuration.
type Kind string

const (
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
)

func (k Kind) IsValid() bool {
	return k == KindFile || k == KindPostgres
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind maps a configured backend name onto a Kind. The empty string
// selects the file backend.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case "":
		return KindFile, nil
	case KindFile, KindPostgres:
		return Kind(raw), nil
	}
	return "", fmt.Errorf("unknown store %q", raw)
}

// Store persists papers and their relationships.
//
// Implementations hold the relationship uniqueness invariant: AddRelationship
// normalizes its input and reports created=false, returning the stored
// record, when the same (from, to, type) triple already exists.
type Store interface {
	Papers(ctx context.Context) ([]paper.Paper, error)
	Relationships(ctx context.Context) ([]paper.Relationship, error)

	// CreatePaper fails with ErrPaperExists when the id is taken.
	CreatePaper(ctx context.Context, p paper.Paper) error
	// UpdatePaper fails with ErrPaperNotFound for unknown ids.
	UpdatePaper(ctx context.Context, p paper.Paper) error
	// DeletePaper also removes every relationship touching the paper.
	DeletePaper(ctx context.Context, id string) error

	AddRelationship(ctx context.Context, rel paper.Relationship) (stored paper.Relationship, created bool, err error)
	DeleteRelationship(ctx context.Context, id string) error

	Close() error
}

// Prepare validates and normalizes a relationship for storage, assigning an
// id when it has none.
func Prepare(rel paper.Relationship) (paper.Relationship, error) {
	rel = paper.Normalize(rel)
	if err := rel.Validate(); err != nil {
		return paper.Relationship{}, err
	}
	if rel.From == rel.To {
		return paper.Relationship{}, ErrSelfRelationship
	}
	if rel.ID == "" {
		id, err := paper.NewRelationshipID()
		if err != nil {
			return paper.Relationship{}, err
		}
		rel.ID = id
	}
	return rel, nil
}

// Dedupe keeps the first relationship for every (from, to, type) triple after
// normalization. Records that fail validation are returned separately.
func Dedupe(rels []paper.Relationship) (kept []paper.Relationship, invalid []paper.Relationship) {
	seen := make(map[paper.Key]struct{}, len(rels))
	kept = make([]paper.Relationship, 0, len(rels))
	for _, rel := range rels {
		rel = paper.Normalize(rel)
		if err := rel.Validate(); err != nil {
			invalid = append(invalid, rel)
			continue
		}
		if _, ok := seen[rel.Key()]; ok {
			continue
		}
		seen[rel.Key()] = struct{}{}
		kept = append(kept, rel)
	}
	return kept, invalid
}
