package search

import "github.com/Paintersrp/citegraph/internal/paper"

// Config describes index behavior.
type Config struct {
	// EnableBody controls whether abstracts and notes are searched in
	// addition to titles, ids, authors and tags.
	EnableBody bool
}

// Query represents a search request against the index.
type Query struct {
	// Term is the free-text query. An empty term matches every paper that
	// passes the filters.
	Term string
	// Tags must all be present on a paper.
	Tags []string
	// Categories, when set, restrict matches to papers in one of them.
	Categories []paper.Category
}

// Result captures a paper match from the index.
type Result struct {
	Paper     paper.Paper `json:"paper"`
	Snippet   string      `json:"snippet,omitempty"`
	MatchFrom string      `json:"match_from"`
}
