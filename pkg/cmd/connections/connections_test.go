package connections

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
)

func openTestState(t *testing.T) *state.State {
	t.Helper()
	ctx := context.Background()
	s, err := state.OpenLibrary(ctx, "test", config.NewLibrary(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	for _, p := range []paper.Paper{
		{ID: "base", Title: "Base", Authors: []string{"Ng"}, Year: 2014},
		{ID: "mid", Title: "Mid", Authors: []string{"Li"}, Year: 2017},
		{ID: "top", Title: "Top", Authors: []string{"Wu"}, Year: 2020},
		{ID: "lone", Title: "Lone", Authors: []string{"Ko"}, Year: 2021},
	} {
		if _, err := s.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper(%s) returned error: %v", p.ID, err)
		}
	}
	for _, rel := range []paper.Relationship{
		{From: "mid", To: "base", Type: paper.Extends, Strength: 9},
		{From: "top", To: "mid", Type: paper.BuildsOn, Strength: 3},
	} {
		if _, _, err := s.Corpus.AddRelationship(ctx, rel); err != nil {
			t.Fatalf("AddRelationship returned error: %v", err)
		}
	}
	return s
}

func runConnections(t *testing.T, s *state.State, args ...string) string {
	t.Helper()
	cmd := NewCmdConnections(s)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("connections %v returned error: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestConnectionsJSONStrongestFirst(t *testing.T) {
	s := openTestState(t)

	var got []graph.Connection
	if err := json.Unmarshal([]byte(runConnections(t, s, "mid", "--json")), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two connections, got %+v", got)
	}

	first := got[0]
	if first.Other.ID != "base" || first.Direction != graph.Outgoing {
		t.Fatalf("expected outgoing link to base first, got %s %s", first.Direction, first.Other.ID)
	}
	if first.Relationship.Type != paper.Extends || first.Relationship.Strength != 9 {
		t.Fatalf("unexpected first relationship %+v", first.Relationship)
	}

	second := got[1]
	if second.Other.ID != "top" || second.Direction != graph.Incoming || second.Relationship.Strength != 3 {
		t.Fatalf("expected incoming link from top second, got %+v", second)
	}
}

func TestConnectionsJSONEmptyAndText(t *testing.T) {
	s := openTestState(t)

	out := runConnections(t, s, "lone", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected an empty JSON array, got %q", out)
	}

	out = runConnections(t, s, "mid")
	if !strings.Contains(out, "Outgoing (1):") || !strings.Contains(out, "Incoming (1):") {
		t.Fatalf("expected both sections in text output:\n%s", out)
	}
}
