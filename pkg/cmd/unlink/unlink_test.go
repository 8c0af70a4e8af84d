package unlink

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
)

func TestUnlinkByIDAndByKey(t *testing.T) {
	ctx := context.Background()
	s, err := state.OpenLibrary(ctx, "test", config.NewLibrary(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	defer s.Close()

	for _, id := range []string{"a", "b"} {
		if _, err := s.Corpus.AddPaper(ctx, paper.Paper{ID: id, Title: id, Authors: []string{"Ng"}, Year: 2020}); err != nil {
			t.Fatalf("AddPaper returned error: %v", err)
		}
	}
	first, _, err := s.Corpus.AddRelationship(ctx, paper.Relationship{From: "a", To: "b", Type: paper.Extends, Strength: 5})
	if err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}
	if _, _, err := s.Corpus.AddRelationship(ctx, paper.Relationship{From: "b", To: "a", Type: paper.Inspires, Strength: 5}); err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}

	run := func(args ...string) (string, error) {
		cmd := NewCmdUnlink(s)
		cmd.SetArgs(args)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		err := cmd.Execute()
		return out.String(), err
	}

	if _, err := run("rel_missing"); !errors.Is(err, store.ErrRelationshipNotFound) {
		t.Fatalf("expected ErrRelationshipNotFound, got %v", err)
	}
	out, err := run(first.ID)
	if err != nil {
		t.Fatalf("unlink by id returned error: %v", err)
	}
	if !strings.Contains(out, "a extends b") {
		t.Fatalf("unexpected output %q", out)
	}

	// "b inspires a" was stored as "a inspired_by b"; the same spelling finds it.
	if _, err := run("b", "a", "--type", "inspires"); err != nil {
		t.Fatalf("unlink by key returned error: %v", err)
	}

	snap, err := s.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot returned error: %v", err)
	}
	if len(snap.Relationships) != 0 {
		t.Fatalf("expected no relationships left, got %#v", snap.Relationships)
	}
}
