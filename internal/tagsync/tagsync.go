// Package tagsync converges locally edited paper tags with the tags held by a
// store. Edits apply optimistically to a local view, are debounced, diffed
// against the last known store state, and written as one retried batch. A
// generation counter, bumped by every local edit, lets a write that was
// overtaken by newer edits give up instead of racing them.
package tagsync

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

// DefaultDebounce is the quiet period after the last edit before a write.
const DefaultDebounce = 750 * time.Millisecond

var (
	ErrClosed     = errors.New("tag reconciler closed")
	errSuperseded = errors.New("superseded by a newer edit")
)

// Change is the full desired tag list of one paper.
type Change struct {
	PaperID string   `json:"paper_id"`
	Tags    []string `json:"tags"`
}

type Writer interface {
	WriteTags(ctx context.Context, changes []Change) error
}

type WriterFunc func(ctx context.Context, changes []Change) error

func (f WriterFunc) WriteTags(ctx context.Context, changes []Change) error {
	return f(ctx, changes)
}

// Result reports the outcome of one reconciliation pass.
type Result struct {
	Generation uint64
	Changes    []Change
	Err        error
	// Stale is set when newer local edits arrived before the pass finished.
	Stale bool
}

type Options struct {
	Debounce time.Duration
	Retry    RetryConfig
	// OnResult receives the outcome of debounced passes.
	OnResult func(Result)
}

type Reconciler struct {
	mu         sync.Mutex
	writer     Writer
	opts       Options
	local      map[string][]string
	server     map[string][]string
	generation uint64
	timer      *time.Timer
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts a reconciler whose local and server views both begin at server.
func New(writer Writer, server map[string][]string, opts Options) *Reconciler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Reconciler{
		writer: writer,
		opts:   opts,
		local:  make(map[string][]string, len(server)),
		server: make(map[string][]string, len(server)),
		ctx:    ctx,
		cancel: cancel,
	}
	for id, tags := range server {
		normalized := paper.NormalizeTags(tags)
		r.server[id] = normalized
		r.local[id] = slices.Clone(normalized)
	}
	return r
}

// FromPapers builds the server view from loaded papers.
func FromPapers(papers []paper.Paper) map[string][]string {
	tags := make(map[string][]string, len(papers))
	for _, p := range papers {
		tags[p.ID] = paper.NormalizeTags(p.Tags)
	}
	return tags
}

// Tags returns the local, possibly unsynced, tags of a paper.
func (r *Reconciler) Tags(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.local[id])
}

// SetTags replaces the local tags of a paper and schedules a write. It returns
// the generation of the edit.
func (r *Reconciler) SetTags(id string, tags []string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[id] = paper.NormalizeTags(tags)
	return r.bumpLocked()
}

// Toggle adds tag to the paper when absent and removes it otherwise.
func (r *Reconciler) Toggle(id, tag string) []string {
	tag = paper.NormalizeTag(tag)
	if tag == "" {
		return r.Tags(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.local[id]
	next := make([]string, 0, len(current)+1)
	found := false
	for _, t := range current {
		if t == tag {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, tag)
	}
	r.local[id] = paper.NormalizeTags(next)
	r.bumpLocked()
	return slices.Clone(r.local[id])
}

func (r *Reconciler) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Pending lists the papers whose local tags differ from the server view.
func (r *Reconciler) Pending() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diffLocked()
}

// Flush reconciles immediately, without waiting for the debounce timer.
func (r *Reconciler) Flush(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	gen := r.generation
	r.mu.Unlock()

	res := r.reconcile(ctx, gen)
	if res.Stale && res.Err == nil {
		return r.Flush(ctx)
	}
	return res.Err
}

// Close stops pending timers and waits for an in-flight pass to finish.
// Unflushed edits are dropped; call Flush first to keep them.
func (r *Reconciler) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return nil
}

func (r *Reconciler) bumpLocked() uint64 {
	r.generation++
	gen := r.generation
	if r.closed {
		return gen
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.opts.Debounce, func() { r.fire(gen) })
	return gen
}

func (r *Reconciler) fire(gen uint64) {
	r.mu.Lock()
	if r.closed || r.generation != gen {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	res := r.reconcile(r.ctx, gen)
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		logger.Warn("tag sync failed", "generation", gen, "changes", len(res.Changes), "err", res.Err)
	}
	if r.opts.OnResult != nil {
		r.opts.OnResult(res)
	}
}

func (r *Reconciler) reconcile(ctx context.Context, gen uint64) Result {
	r.mu.Lock()
	changes := r.diffLocked()
	r.mu.Unlock()

	res := Result{Generation: gen, Changes: changes}
	if len(changes) == 0 {
		return res
	}

	err := retryWithBackoff(ctx, r.opts.Retry, func(ctx context.Context) error {
		if r.Generation() != gen {
			return Permanent(errSuperseded)
		}
		return r.writer.WriteTags(ctx, changes)
	})
	if errors.Is(err, errSuperseded) {
		res.Stale = true
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}

	r.mu.Lock()
	for _, c := range changes {
		r.server[c.PaperID] = slices.Clone(c.Tags)
	}
	res.Stale = r.generation != gen
	r.mu.Unlock()

	logger.Debug("tags synced", "generation", gen, "changes", len(changes))
	return res
}

func (r *Reconciler) diffLocked() []Change {
	changes := make([]Change, 0)
	for id, tags := range r.local {
		if !slices.Equal(tags, r.server[id]) {
			changes = append(changes, Change{PaperID: id, Tags: slices.Clone(tags)})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].PaperID < changes[j].PaperID
	})
	return changes
}
