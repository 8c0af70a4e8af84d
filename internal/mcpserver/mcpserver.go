// Package mcpserver exposes the paper library as MCP tools so agents can
// query connections, bridge suggestions and the review queue.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Paintersrp/citegraph/internal/constants"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/review"
	"github.com/Paintersrp/citegraph/internal/search"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
)

const (
	defaultBridgeLimit = 5
	maxBridgeLimit     = 50
	defaultSearchLimit = 20
)

// New builds an MCP server backed by an open library.
func New(st *state.State) *server.MCPServer {
	s := server.NewMCPServer("citegraph", constants.Version)

	h := &handler{state: st}
	s.AddTool(listPapersTool(), h.listPapers)
	s.AddTool(showPaperTool(), h.showPaper)
	s.AddTool(searchPapersTool(), h.searchPapers)
	s.AddTool(connectionsTool(), h.connections)
	s.AddTool(bridgesTool(), h.bridges)
	s.AddTool(reviewQueueTool(), h.reviewQueue)
	s.AddTool(graphTool(), h.graph)
	s.AddTool(addRelationshipTool(), h.addRelationship)
	return s
}

// ServeStdio serves the library over stdio until the client disconnects.
func ServeStdio(st *state.State) error {
	return server.ServeStdio(New(st))
}

type handler struct {
	state *state.State
}

// Tool definitions.

func listPapersTool() mcp.Tool {
	return mcp.NewTool("list_papers",
		mcp.WithDescription(
			"List the papers in the library with their id, title, authors, year, "+
				"category, tags and familiarity. Optionally filter by tag or category.",
		),
		mcp.WithString("tag",
			mcp.Description("only papers carrying this tag"),
		),
		mcp.WithString("category",
			mcp.Description("only papers in this category, e.g. transformer"),
		),
	)
}

func searchPapersTool() mcp.Tool {
	return mcp.NewTool("search_papers",
		mcp.WithDescription(
			"Search papers by title, id, author, tag, abstract and notes. "+
				"Title matches rank first. Returns the matching papers with a snippet.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("case-insensitive search term"),
		),
		mcp.WithString("tag",
			mcp.Description("only papers carrying this tag"),
		),
		mcp.WithNumber("limit",
			mcp.Description("maximum number of results, default 20"),
		),
	)
}

func showPaperTool() mcp.Tool {
	return mcp.NewTool("show_paper",
		mcp.WithDescription("Return one paper including its abstract and notes."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("paper id, e.g. vaswani2017attention"),
		),
	)
}

func connectionsTool() mcp.Tool {
	return mcp.NewTool("connections",
		mcp.WithDescription(
			"List every relationship touching a paper, strongest first, with the "+
				"direction and the paper on the other end.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("paper id"),
		),
	)
}

func bridgesTool() mcp.Tool {
	return mcp.NewTool("bridges",
		mcp.WithDescription(
			"Recommend papers that are not yet linked to the given paper but share "+
				"neighbors, category, tags or publication era with it. Each suggestion "+
				"carries a score and the reasons behind it.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("paper id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("maximum suggestions (default 5, max 50)"),
		),
	)
}

func reviewQueueTool() mcp.Tool {
	return mcp.NewTool("review_queue",
		mcp.WithDescription(
			"Return the papers most worth revisiting, least familiar first, then by "+
				"importance and year.",
		),
		mcp.WithNumber("limit",
			mcp.Description("maximum papers (default from library config)"),
		),
		mcp.WithString("tag",
			mcp.Description("only papers carrying this tag"),
		),
	)
}

func graphTool() mcp.Tool {
	return mcp.NewTool("graph",
		mcp.WithDescription(
			"Return the laid out relationship graph of the library as JSON nodes and "+
				"edges, or as Graphviz DOT.",
		),
		mcp.WithString("format",
			mcp.Description("json (default) or dot"),
		),
	)
}

func addRelationshipTool() mcp.Tool {
	types := make([]string, 0, len(paper.AllRelationshipTypes))
	for _, t := range paper.AllRelationshipTypes {
		types = append(types, string(t))
	}
	return mcp.NewTool("add_relationship",
		mcp.WithDescription(
			"Record a typed relationship between two papers. Adding a relationship "+
				"that already exists returns the existing one.",
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("id of the paper the relationship starts at"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("id of the paper the relationship points to"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("one of: "+strings.Join(types, ", ")),
		),
		mcp.WithNumber("strength",
			mcp.Description("1-10, default 5"),
		),
		mcp.WithString("description",
			mcp.Description("optional free text"),
		),
	)
}

// Tool handlers.

func (h *handler) listPapers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.state.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load library: %v", err)), nil
	}

	tag := paper.NormalizeTag(req.GetString("tag", ""))
	category := strings.TrimSpace(req.GetString("category", ""))
	if category != "" {
		if _, err := paper.ParseCategory(category); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	type summary struct {
		ID          string            `json:"id"`
		Title       string            `json:"title"`
		Authors     []string          `json:"authors"`
		Year        int               `json:"year"`
		Category    paper.Category    `json:"category"`
		Tags        []string          `json:"tags"`
		Familiarity paper.Familiarity `json:"familiarity_level,omitempty"`
		Importance  int               `json:"importance_rating,omitempty"`
	}
	out := make([]summary, 0, len(snap.Papers))
	for _, p := range snap.Papers {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		if category != "" && !strings.EqualFold(string(p.Category), category) {
			continue
		}
		out = append(out, summary{
			ID: p.ID, Title: p.Title, Authors: p.Authors, Year: p.Year,
			Category: p.Category, Tags: p.Tags, Familiarity: p.Familiarity, Importance: p.Importance,
		})
	}
	return jsonResult(out)
}

func (h *handler) searchPapers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	snap, err := h.state.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load library: %v", err)), nil
	}

	idx := search.NewIndex(search.Config{EnableBody: true})
	idx.Build(snap.Papers)
	q := search.Query{Term: query}
	if tag := req.GetString("tag", ""); tag != "" {
		q.Tags = []string{tag}
	}
	results := idx.Search(q)

	limit := req.GetInt("limit", defaultSearchLimit)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	type match struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Year      int    `json:"year"`
		MatchFrom string `json:"match_from"`
		Snippet   string `json:"snippet,omitempty"`
	}
	out := make([]match, 0, len(results))
	for _, r := range results {
		out = append(out, match{
			ID: r.Paper.ID, Title: r.Paper.Title, Year: r.Paper.Year,
			MatchFrom: r.MatchFrom, Snippet: r.Snippet,
		})
	}
	return jsonResult(out)
}

func (h *handler) showPaper(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	snap, err := h.state.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load library: %v", err)), nil
	}
	p, ok := snap.Paper(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("paper not found: %s", id)), nil
	}
	return jsonResult(p)
}

func (h *handler) connections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	connections, err := h.state.Corpus.Connections(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(connections)
}

func (h *handler) bridges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	limit := max(1, min(req.GetInt("limit", defaultBridgeLimit), maxBridgeLimit))

	bridges, err := h.state.Corpus.Bridges(ctx, id, limit, h.state.Weights())
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(bridges)
}

func (h *handler) reviewQueue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.state.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load library: %v", err)), nil
	}

	limit := 0
	if h.state.Library != nil {
		limit = h.state.Library.Review.Limit
	}
	opts := review.QueueOptions{Limit: req.GetInt("limit", limit)}
	if tag := strings.TrimSpace(req.GetString("tag", "")); tag != "" {
		opts.Tags = []string{tag}
	}
	return jsonResult(review.BuildQueue(snap.Papers, opts))
}

func (h *handler) graph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := strings.ToLower(strings.TrimSpace(req.GetString("format", "json")))
	if format != "json" && format != "dot" {
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (use json or dot)", format)), nil
	}

	snap, err := h.state.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load library: %v", err)), nil
	}
	opts, err := h.state.BuildOptions()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := graph.Build(snap.Papers, snap.Relationships, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build graph: %v", err)), nil
	}

	if format == "dot" {
		return mcp.NewToolResultText(g.ToDOT()), nil
	}
	return jsonResult(g)
}

func (h *handler) addRelationship(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("from is required"), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to is required"), nil
	}
	rawType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type is required"), nil
	}
	relType, err := paper.ParseRelationshipType(rawType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel := paper.Relationship{
		From:        from,
		To:          to,
		Type:        relType,
		Strength:    req.GetInt("strength", 5),
		Description: req.GetString("description", ""),
	}
	stored, created, err := h.state.Corpus.AddRelationship(ctx, rel)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(struct {
		Relationship paper.Relationship `json:"relationship"`
		Created      bool               `json:"created"`
	}{stored, created})
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, store.ErrPaperNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("paper not found: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
