package corpus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/internal/tagsync"
)

// AddPaper stores a new paper. An empty id is derived from the authors,
// year and title and made unique against the library.
func (s *Service) AddPaper(ctx context.Context, p paper.Paper) (paper.Paper, error) {
	if err := s.checkOpen(); err != nil {
		return paper.Paper{}, err
	}
	p.Tags = paper.NormalizeTags(p.Tags)
	if p.Category == "" {
		p.Category = paper.CategoryOther
	}

	if p.ID == "" {
		snap, err := s.AcquireSnapshot(ctx)
		if err != nil {
			return paper.Paper{}, err
		}
		taken := snap.IDs()
		id, err := paper.UniqueID(paper.SuggestID(p), func(candidate string) bool {
			return taken[candidate]
		})
		if err != nil {
			return paper.Paper{}, err
		}
		p.ID = id
	}

	if err := s.store.CreatePaper(ctx, p); err != nil {
		return paper.Paper{}, err
	}
	s.Invalidate()
	return p, nil
}

// UpdatePaper loads id, applies fn to a copy, and stores the result.
func (s *Service) UpdatePaper(
	ctx context.Context,
	id string,
	fn func(*paper.Paper) error,
) (paper.Paper, error) {
	snap, err := s.AcquireSnapshot(ctx)
	if err != nil {
		return paper.Paper{}, err
	}
	p, ok := snap.Paper(id)
	if !ok {
		return paper.Paper{}, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
	}

	if err := fn(&p); err != nil {
		return paper.Paper{}, err
	}
	p.ID = id
	p.Tags = paper.NormalizeTags(p.Tags)

	if err := s.store.UpdatePaper(ctx, p); err != nil {
		return paper.Paper{}, err
	}
	s.Invalidate()
	return p, nil
}

// RemovePaper deletes a paper together with its relationships.
func (s *Service) RemovePaper(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.store.DeletePaper(ctx, id); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// AddRelationship stores rel in canonical form. created is false when an
// equivalent relationship already existed; stored is then the existing one.
func (s *Service) AddRelationship(
	ctx context.Context,
	rel paper.Relationship,
) (stored paper.Relationship, created bool, err error) {
	if err := s.checkOpen(); err != nil {
		return paper.Relationship{}, false, err
	}
	stored, created, err = s.store.AddRelationship(ctx, rel)
	if err != nil {
		return paper.Relationship{}, false, err
	}
	if created {
		s.Invalidate()
	}
	return stored, created, nil
}

func (s *Service) RemoveRelationship(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.store.DeleteRelationship(ctx, id); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *Service) SetFamiliarity(ctx context.Context, id string, level paper.Familiarity) (paper.Paper, error) {
	if !level.IsValid() {
		return paper.Paper{}, fmt.Errorf("unknown familiarity level %q", level)
	}
	return s.UpdatePaper(ctx, id, func(p *paper.Paper) error {
		p.Familiarity = level
		return nil
	})
}

// SetImportance stores a 1-5 rating, or clears it with 0.
func (s *Service) SetImportance(ctx context.Context, id string, rating int) (paper.Paper, error) {
	if rating < 0 || rating > 5 {
		return paper.Paper{}, fmt.Errorf("importance rating must be between 1 and 5, got %d", rating)
	}
	return s.UpdatePaper(ctx, id, func(p *paper.Paper) error {
		p.Importance = rating
		return nil
	})
}

func (s *Service) ToggleFavorite(ctx context.Context, id string) (paper.Paper, error) {
	return s.UpdatePaper(ctx, id, func(p *paper.Paper) error {
		p.Favorite = !p.Favorite
		return nil
	})
}

// SetTags replaces the tags of a paper.
func (s *Service) SetTags(ctx context.Context, id string, tags []string) (paper.Paper, error) {
	return s.UpdatePaper(ctx, id, func(p *paper.Paper) error {
		p.Tags = tags
		return nil
	})
}

// WriteTags applies a batch of tag changes from the reconciler. Unknown
// papers fail permanently so the reconciler stops retrying.
func (s *Service) WriteTags(ctx context.Context, changes []tagsync.Change) error {
	for _, change := range changes {
		if _, err := s.SetTags(ctx, change.PaperID, change.Tags); err != nil {
			if errors.Is(err, store.ErrPaperNotFound) || errors.Is(err, ErrClosed) {
				return tagsync.Permanent(err)
			}
			return err
		}
	}
	return nil
}

func (s *Service) MarkReviewed(ctx context.Context, id string, at time.Time) (paper.Paper, error) {
	return s.UpdatePaper(ctx, id, func(p *paper.Paper) error {
		p.LastReviewed = at.UTC()
		return nil
	})
}

func (s *Service) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
