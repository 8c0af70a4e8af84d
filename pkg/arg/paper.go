package arg

import (
	"context"
	"errors"
	"fmt"

	"github.com/Paintersrp/citegraph/internal/fzf"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
)

// ErrNoPaper is returned when no paper id was given and the library is empty.
var ErrNoPaper = errors.New("no paper selected")

// finder is replaced in tests.
var finder = func(papers []paper.Paper, header, query string) (paper.Paper, error) {
	return fzf.NewFuzzyFinder(papers, header).RunWithQuery(query)
}

// HandlePaper resolves the paper named by the first argument. An exact id
// wins; otherwise the argument seeds the fuzzy finder, and no argument opens
// it empty.
func HandlePaper(ctx context.Context, s *state.State, args []string, header string) (paper.Paper, error) {
	snap, err := s.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return paper.Paper{}, err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
		if p, ok := snap.Paper(query); ok {
			return p, nil
		}
	}
	if len(snap.Papers) == 0 {
		if query != "" {
			return paper.Paper{}, fmt.Errorf("%w: %s", store.ErrPaperNotFound, query)
		}
		return paper.Paper{}, ErrNoPaper
	}

	p, err := finder(snap.Papers, header, query)
	if errors.Is(err, fzf.ErrNoSelection) {
		return paper.Paper{}, ErrNoPaper
	}
	return p, err
}

// HandleIDs resolves every argument as an exact paper id.
func HandleIDs(ctx context.Context, s *state.State, args []string) ([]paper.Paper, error) {
	snap, err := s.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	papers := make([]paper.Paper, 0, len(args))
	for _, id := range args {
		p, ok := snap.Paper(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
		}
		papers = append(papers, p)
	}
	return papers, nil
}
