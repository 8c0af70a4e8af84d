package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/render"
)

// ErrNoSelection is returned when the user aborts the finder.
var ErrNoSelection = errors.New("no paper selected")

// FuzzyFinder selects papers with an interactive fuzzy finder.
type FuzzyFinder struct {
	Header string
	papers []paper.Paper
}

func NewFuzzyFinder(papers []paper.Paper, header string) *FuzzyFinder {
	return &FuzzyFinder{papers: papers, Header: header}
}

// Run opens the finder and returns the selected paper.
func (f *FuzzyFinder) Run() (paper.Paper, error) {
	return f.RunWithQuery("")
}

func (f *FuzzyFinder) RunWithQuery(query string) (paper.Paper, error) {
	if len(f.papers) == 0 {
		return paper.Paper{}, fmt.Errorf("library has no papers")
	}

	idx, err := fuzzyfinder.Find(f.papers, func(i int) string {
		return Row(f.papers[i])
	}, f.options(query)...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return paper.Paper{}, ErrNoSelection
		}
		return paper.Paper{}, fmt.Errorf("error selecting paper: %w", err)
	}
	return f.papers[idx], nil
}

// RunMulti lets the user select several papers at once.
func (f *FuzzyFinder) RunMulti(query string) ([]paper.Paper, error) {
	if len(f.papers) == 0 {
		return nil, fmt.Errorf("library has no papers")
	}

	idxs, err := fuzzyfinder.FindMulti(f.papers, func(i int) string {
		return Row(f.papers[i])
	}, f.options(query)...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrNoSelection
		}
		return nil, fmt.Errorf("error selecting papers: %w", err)
	}

	selected := make([]paper.Paper, 0, len(idxs))
	for _, i := range idxs {
		selected = append(selected, f.papers[i])
	}
	return selected, nil
}

func (f *FuzzyFinder) options(query string) []fuzzyfinder.Option {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}
	return options
}

// Row is the searchable line shown for a paper.
func Row(p paper.Paper) string {
	tags := "No tags"
	if len(p.Tags) > 0 {
		tags = "Tags: " + strings.Join(p.Tags, ", ")
	}
	return fmt.Sprintf("%s (%d) %s [%s] ", p.Title, p.Year, p.FirstAuthor(), tags)
}

func (f *FuzzyFinder) renderPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	out, err := render.Terminal(render.PaperMarkdown(f.papers[i]), w-4)
	if err != nil {
		return "Error rendering paper"
	}
	return out
}
