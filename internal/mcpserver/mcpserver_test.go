package mcpserver

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
)

func newTestHandler(t *testing.T) *handler {
	t.Helper()
	ctx := context.Background()

	st, err := state.OpenLibrary(ctx, "test", config.NewLibrary(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenLibrary returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	for _, p := range []paper.Paper{
		{ID: "a", Title: "Alpha", Authors: []string{"Ng"}, Year: 2018, Category: paper.CategoryCNN, Tags: []string{"vision"}},
		{ID: "b", Title: "Beta", Authors: []string{"Li"}, Year: 2020, Category: paper.CategoryCNN, Tags: []string{"vision"}},
		{ID: "c", Title: "Gamma", Authors: []string{"Ko"}, Year: 2019, Category: paper.CategoryTransformer},
	} {
		if _, err := st.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper returned error: %v", err)
		}
	}
	if _, _, err := st.Corpus.AddRelationship(ctx, paper.Relationship{From: "c", To: "a", Type: paper.Extends, Strength: 6}); err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}
	return &handler{state: st}
}

func newCallToolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func assertIsToolError(t *testing.T, result *mcp.CallToolResult, substr string) {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected tool error result")
	}
	if text := resultText(t, result); !strings.Contains(text, substr) {
		t.Errorf("error text %q does not contain %q", text, substr)
	}
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool         mcp.Tool
		wantName     string
		wantRequired []string
	}{
		{listPapersTool(), "list_papers", nil},
		{showPaperTool(), "show_paper", []string{"id"}},
		{searchPapersTool(), "search_papers", []string{"query"}},
		{connectionsTool(), "connections", []string{"id"}},
		{bridgesTool(), "bridges", []string{"id"}},
		{reviewQueueTool(), "review_queue", nil},
		{graphTool(), "graph", nil},
		{addRelationshipTool(), "add_relationship", []string{"from", "to", "type"}},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			for _, req := range tt.wantRequired {
				if !slices.Contains(tt.tool.InputSchema.Required, req) {
					t.Errorf("required params %v missing %q", tt.tool.InputSchema.Required, req)
				}
			}
		})
	}
}

func TestListPapersFiltersByTag(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.listPapers(context.Background(), newCallToolRequest(map[string]any{"tag": "Vision"}))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	var papers []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &papers); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(papers) != 2 || papers[0].ID != "a" || papers[1].ID != "b" {
		t.Fatalf("unexpected papers %+v", papers)
	}
}

func TestBridgesRanksUnlinkedPapers(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.bridges(context.Background(), newCallToolRequest(map[string]any{"id": "a", "limit": 10}))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	var bridges []graph.Bridge
	if err := json.Unmarshal([]byte(resultText(t, result)), &bridges); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(bridges) != 1 || bridges[0].Paper.ID != "b" {
		t.Fatalf("expected only b as a bridge, got %+v", bridges)
	}
}

func TestConnectionsUnknownPaper(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.connections(context.Background(), newCallToolRequest(map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	assertIsToolError(t, result, "paper not found")
}

func TestMissingRequiredArguments(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	result, _ := h.showPaper(ctx, newCallToolRequest(map[string]any{}))
	assertIsToolError(t, result, "id is required")

	result, _ = h.addRelationship(ctx, newCallToolRequest(map[string]any{"from": "a"}))
	assertIsToolError(t, result, "to is required")
}

func TestAddRelationshipReportsDuplicates(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	args := map[string]any{"from": "b", "to": "a", "type": "builds_on", "strength": 7}

	result, err := h.addRelationship(ctx, newCallToolRequest(args))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !strings.Contains(resultText(t, result), `"created": true`) {
		t.Fatalf("expected a new relationship, got %s", resultText(t, result))
	}

	result, _ = h.addRelationship(ctx, newCallToolRequest(args))
	if !strings.Contains(resultText(t, result), `"created": false`) {
		t.Fatalf("expected the duplicate to be reported, got %s", resultText(t, result))
	}

	result, _ = h.addRelationship(ctx, newCallToolRequest(map[string]any{"from": "a", "to": "a", "type": "related"}))
	if !result.IsError {
		t.Fatalf("expected a self relationship to be rejected")
	}
}

func TestGraphFormats(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	result, _ := h.graph(ctx, newCallToolRequest(map[string]any{"format": "dot"}))
	if !strings.HasPrefix(resultText(t, result), "digraph Papers {") {
		t.Fatalf("expected DOT output, got %s", resultText(t, result))
	}

	result, _ = h.graph(ctx, newCallToolRequest(map[string]any{}))
	var g graph.Graph
	if err := json.Unmarshal([]byte(resultText(t, result)), &g); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 1 || !g.LaidOut {
		t.Fatalf("unexpected graph %+v", g)
	}

	result, _ = h.graph(ctx, newCallToolRequest(map[string]any{"format": "svg"}))
	assertIsToolError(t, result, "unknown format")
}

func TestSearchPapersRanksTitlesFirst(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.searchPapers(context.Background(), newCallToolRequest(map[string]any{"query": "a"}))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	var matches []struct {
		ID        string `json:"id"`
		MatchFrom string `json:"match_from"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &matches); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(matches) != 3 || matches[0].ID != "b" || matches[0].MatchFrom != "title" {
		t.Fatalf("unexpected matches %+v", matches)
	}

	result, _ = h.searchPapers(context.Background(), newCallToolRequest(map[string]any{"query": "  "}))
	assertIsToolError(t, result, "query is required")
}
