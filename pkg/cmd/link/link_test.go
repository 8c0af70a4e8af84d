package link

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
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
		{ID: "old", Title: "Old Work", Authors: []string{"Ng"}, Year: 2014},
		{ID: "new", Title: "New Work", Authors: []string{"Li"}, Year: 2019},
	} {
		if _, err := s.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper(%s) returned error: %v", p.ID, err)
		}
	}
	return s
}

func runLink(t *testing.T, s *state.State, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmdLink(s)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestLinkCreatesAndDedupes(t *testing.T) {
	s := openTestState(t)

	out, err := runLink(t, s, "new", "old", "--type", "builds on", "--strength", "8", "-d", "reuses the encoder")
	if err != nil {
		t.Fatalf("link returned error: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "Linked: New Work builds on Old Work (strength 8)") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runLink(t, s, "new", "old", "--type", "builds_on", "--strength", "3")
	if err != nil {
		t.Fatalf("duplicate link returned error: %v", err)
	}
	if !strings.HasPrefix(out, "Already linked:") {
		t.Fatalf("expected duplicate to be reported, got %q", out)
	}

	snap, err := s.Corpus.AcquireSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	if len(snap.Relationships) != 1 || snap.Relationships[0].Strength != 8 {
		t.Fatalf("expected the first relationship to be kept, got %#v", snap.Relationships)
	}
}

func TestLinkStoresInspiresAsInspiredBy(t *testing.T) {
	s := openTestState(t)

	out, err := runLink(t, s, "old", "new", "--type", "inspires")
	if err != nil {
		t.Fatalf("link returned error: %v", err)
	}
	if !strings.Contains(out, "New Work is inspired by Old Work") {
		t.Fatalf("expected the stored direction in the output, got %q", out)
	}

	snap, err := s.Corpus.AcquireSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	rel := snap.Relationships[0]
	if rel.From != "new" || rel.To != "old" || rel.Type != paper.InspiredBy {
		t.Fatalf("expected new inspired_by old, got %#v", rel)
	}
}

func TestLinkRejectsBadInput(t *testing.T) {
	s := openTestState(t)

	cases := map[string][]string{
		"missing type":  {"new", "old"},
		"unknown type":  {"new", "old", "--type", "cites"},
		"self link":     {"new", "new", "--type", "extends"},
		"weak strength": {"new", "old", "--type", "extends", "--strength", "0"},
	}
	for name, args := range cases {
		if _, err := runLink(t, s, args...); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
