package backup

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
)

func openTestState(t *testing.T) *state.State {
	t.Helper()
	s, err := state.OpenLibrary(context.Background(), "test", config.NewLibrary(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func runBackup(t *testing.T, s *state.State, args ...string) string {
	t.Helper()
	cmd := NewCmdBackup(s)
	cmd.SetArgs(args)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("backup %v returned error: %v", args, err)
	}
	return out.String()
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestState(t)
	for _, p := range []paper.Paper{
		{ID: "base", Title: "Base", Authors: []string{"Ng"}, Year: 2018, Abstract: "We study bases."},
		{ID: "next", Title: "Next", Authors: []string{"Li"}, Year: 2020},
	} {
		if _, err := src.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper(%s) returned error: %v", p.ID, err)
		}
	}
	if _, _, err := src.Corpus.AddRelationship(ctx, paper.Relationship{
		From: "next", To: "base", Type: paper.BuildsOn, Strength: 7,
	}); err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}

	archive := filepath.Join(t.TempDir(), "library.tar.gz")
	if out := runBackup(t, src, "export", archive); !strings.Contains(out, "Exported") {
		t.Fatalf("unexpected export output %q", out)
	}

	dst := openTestState(t)
	if _, err := dst.Corpus.AcquireSnapshot(ctx); err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	if out := runBackup(t, dst, "import", archive); !strings.Contains(out, "Imported") {
		t.Fatalf("unexpected import output %q", out)
	}

	snap, err := dst.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	if len(snap.Papers) != 2 || len(snap.Relationships) != 1 {
		t.Fatalf("expected the restored corpus, got %d papers and %d relationships",
			len(snap.Papers), len(snap.Relationships))
	}
	base, ok := snap.Paper("base")
	if !ok || base.Abstract != "We study bases." {
		t.Fatalf("expected the abstract to survive the round trip, got %+v", base)
	}
	if rel := snap.Relationships[0]; rel.From != "next" || rel.To != "base" || rel.Strength != 7 {
		t.Fatalf("unexpected restored relationship %+v", rel)
	}
}
