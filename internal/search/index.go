package search

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// Match sources, from strongest to weakest.
const (
	MatchTitle    = "title"
	MatchID       = "id"
	MatchAuthor   = "author"
	MatchTag      = "tag"
	MatchAbstract = "abstract"
	MatchNotes    = "notes"
	MatchFilter   = "filter"
)

var matchRank = map[string]int{
	MatchTitle:    0,
	MatchID:       1,
	MatchAuthor:   2,
	MatchTag:      3,
	MatchAbstract: 4,
	MatchNotes:    5,
	MatchFilter:   6,
}

type document struct {
	paper paper.Paper
	title string
	id    string
}

// Index stores searchable representations of papers.
type Index struct {
	cfg  Config
	docs map[string]document
}

// NewIndex constructs an empty index.
func NewIndex(cfg Config) *Index {
	return &Index{cfg: cfg, docs: make(map[string]document)}
}

// Build replaces the index contents with papers.
func (idx *Index) Build(papers []paper.Paper) {
	idx.docs = make(map[string]document, len(papers))
	for _, p := range papers {
		idx.Update(p)
	}
}

// Update refreshes the indexed representation of p.
func (idx *Index) Update(p paper.Paper) {
	if strings.TrimSpace(p.ID) == "" {
		return
	}
	idx.docs[p.ID] = document{
		paper: p,
		title: strings.ToLower(p.Title),
		id:    strings.ToLower(p.ID),
	}
}

// Remove deletes the paper with id from the index if present.
func (idx *Index) Remove(id string) {
	delete(idx.docs, id)
}

// Len reports the number of indexed papers.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search evaluates q against the index. Results are ordered by the strength
// of the field that matched, then by year descending and id.
func (idx *Index) Search(q Query) []Result {
	if len(idx.docs) == 0 {
		return nil
	}
	term := strings.ToLower(strings.TrimSpace(q.Term))
	tags := paper.NormalizeTags(q.Tags)

	results := make([]Result, 0)
	for _, doc := range idx.docs {
		if !doc.matchesFilters(tags, q.Categories) {
			continue
		}

		if term == "" {
			results = append(results, Result{Paper: doc.paper, MatchFrom: MatchFilter})
			continue
		}

		if from, snippet, ok := doc.match(term, idx.cfg.EnableBody); ok {
			results = append(results, Result{Paper: doc.paper, Snippet: snippet, MatchFrom: from})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if matchRank[a.MatchFrom] != matchRank[b.MatchFrom] {
			return matchRank[a.MatchFrom] < matchRank[b.MatchFrom]
		}
		if a.Paper.Year != b.Paper.Year {
			return a.Paper.Year > b.Paper.Year
		}
		return a.Paper.ID < b.Paper.ID
	})
	return results
}

func (d document) matchesFilters(tags []string, categories []paper.Category) bool {
	for _, required := range tags {
		if !d.paper.HasTag(required) {
			return false
		}
	}
	if len(categories) > 0 && !slices.Contains(categories, d.paper.Category) {
		return false
	}
	return true
}

func (d document) match(term string, body bool) (string, string, bool) {
	if strings.Contains(d.title, term) {
		return MatchTitle, d.paper.Title, true
	}
	if strings.Contains(d.id, term) {
		return MatchID, d.paper.ID, true
	}
	for _, author := range d.paper.Authors {
		if strings.Contains(strings.ToLower(author), term) {
			return MatchAuthor, fmt.Sprintf("author: %s", author), true
		}
	}
	for _, tag := range d.paper.Tags {
		if strings.Contains(tag, term) {
			return MatchTag, fmt.Sprintf("tag: %s", tag), true
		}
	}
	if !body {
		return "", "", false
	}
	if snippet, ok := matchBody(d.paper.Abstract, term); ok {
		return MatchAbstract, snippet, true
	}
	if snippet, ok := matchBody(d.paper.Notes, term); ok {
		return MatchNotes, snippet, true
	}
	return "", "", false
}

func matchBody(body, term string) (string, bool) {
	lowered := strings.ToLower(body)
	i := strings.Index(lowered, term)
	if i == -1 {
		return "", false
	}
	runeStart := utf8.RuneCountInString(lowered[:i])
	return bodySnippet(body, runeStart, utf8.RuneCountInString(term)), true
}

func bodySnippet(body string, index, termLen int) string {
	if termLen <= 0 {
		termLen = 1
	}

	runes := []rune(body)
	start := max(0, index)
	end := min(len(runes), index+termLen)

	const window = 40
	snippetStart := max(0, start-window)
	snippetEnd := min(len(runes), end+window)

	snippet := string(runes[snippetStart:snippetEnd])
	snippet = strings.Join(strings.Fields(snippet), " ")
	if snippetStart > 0 {
		snippet = "…" + snippet
	}
	if snippetEnd < len(runes) {
		snippet = snippet + "…"
	}
	return snippet
}
