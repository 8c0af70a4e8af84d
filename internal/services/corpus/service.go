package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

// ErrClosed signals that the corpus service has been shut down and cannot be
// used to produce new snapshots.
var ErrClosed = errors.New("corpus service closed")

// ErrUnavailable indicates that no snapshot could be loaded.
var ErrUnavailable = errors.New("corpus unavailable")

// DefaultMaxAge is how long a loaded snapshot is served before the store is
// read again.
const DefaultMaxAge = 60 * time.Second

// Stats captures lightweight instrumentation about the shared corpus.
type Stats struct {
	LastRebuild   time.Time
	Pending       int
	Revision      uint64
	Papers        int
	Relationships int
}

// Service owns the in-memory corpus of a library and coordinates reloads
// triggered by staleness, local mutations, and the library watcher.
type Service struct {
	mu          sync.RWMutex
	store       store.Store
	snapshot    *Snapshot
	pending     map[string]struct{}
	revision    uint64
	// generation counts invalidations. A reload that overlaps one publishes
	// its result but stays stale.
	generation  uint64
	stale       bool
	lastRebuild time.Time
	closed      bool
	memo        *graph.Memo

	now    func() time.Time
	maxAge time.Duration
}

// NewService wraps st. A maxAge of zero or less uses DefaultMaxAge.
func NewService(st store.Store, maxAge time.Duration) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Service{
		store:   st,
		pending: make(map[string]struct{}),
		memo:    graph.NewMemo(4),
		now:     time.Now,
		maxAge:  maxAge,
	}
}

// AcquireSnapshot returns a private copy of the current corpus, reloading it
// from the store first when it is missing, stale, or invalidated.
func (s *Service) AcquireSnapshot(ctx context.Context) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, ErrUnavailable
	}

	if err := s.ensureFresh(ctx); err != nil {
		return Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Snapshot{}, ErrClosed
	}
	if s.snapshot == nil {
		return Snapshot{}, ErrUnavailable
	}
	return s.snapshot.Clone(), nil
}

// QueueUpdate records a changed library path. The next snapshot reloads.
func (s *Service) QueueUpdate(rel string) {
	if s == nil {
		return
	}

	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.pending == nil {
		s.pending = make(map[string]struct{})
	}
	s.pending[filepath.ToSlash(trimmed)] = struct{}{}
	s.generation++
}

// Invalidate forces the next snapshot to reload from the store.
func (s *Service) Invalidate() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.generation++
}

// Stats returns instrumentation about the corpus lifecycle.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		LastRebuild: s.lastRebuild,
		Pending:     len(s.pending),
		Revision:    s.revision,
	}
	if s.snapshot != nil {
		stats.Papers = len(s.snapshot.Papers)
		stats.Relationships = len(s.snapshot.Relationships)
	}
	return stats
}

// Close releases the service. The store is left open for its owner to close.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.snapshot = nil
	s.pending = nil
	return nil
}

// Connections resolves the relationships touching id in the current corpus.
func (s *Service) Connections(ctx context.Context, id string) ([]graph.Connection, error) {
	snap, err := s.AcquireSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Paper(id); !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
	}
	return s.memo.Connections(snap.Revision, id, snap.Papers, snap.Relationships), nil
}

// Bridges recommends papers to link with id.
func (s *Service) Bridges(
	ctx context.Context,
	id string,
	limit int,
	weights graph.Weights,
) ([]graph.Bridge, error) {
	snap, err := s.AcquireSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Paper(id); !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
	}
	return s.memo.Bridges(snap.Revision, id, snap.Papers, snap.Relationships, limit, weights), nil
}

func (s *Service) ensureFresh(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	needsRebuild := s.snapshot == nil || s.stale || len(s.pending) > 0
	if !needsRebuild && s.maxAge > 0 {
		needsRebuild = s.now().Sub(s.lastRebuild) > s.maxAge
	}
	s.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !needsRebuild {
		return nil
	}
	return s.rebuild(ctx)
}

func (s *Service) rebuild(ctx context.Context) error {
	s.mu.RLock()
	generation := s.generation
	s.mu.RUnlock()

	papers, err := s.store.Papers(ctx)
	if err != nil {
		return fmt.Errorf("load papers: %w", err)
	}
	rels, err := s.store.Relationships(ctx)
	if err != nil {
		return fmt.Errorf("load relationships: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.revision++
	s.lastRebuild = s.now()
	if s.generation == generation {
		s.pending = make(map[string]struct{})
		s.stale = false
	} else {
		s.stale = true
	}
	s.snapshot = &Snapshot{
		Revision:      s.revision,
		Papers:        papers,
		Relationships: rels,
		LoadedAt:      s.lastRebuild,
	}
	logger.Debug("corpus reloaded",
		"revision", s.revision,
		"papers", len(papers),
		"relationships", len(rels),
		"stale", s.stale,
	)
	return nil
}
