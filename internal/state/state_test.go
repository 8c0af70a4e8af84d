package state

import (
	"context"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/store/file"
)

func TestOpenLibraryWiresFileStore(t *testing.T) {
	ctx := context.Background()
	lib := config.NewLibrary(t.TempDir())

	s, err := OpenLibrary(ctx, "test", lib)
	if err != nil {
		t.Fatalf("OpenLibrary returned error: %v", err)
	}
	defer s.Close()

	if _, ok := s.Store.(*file.Store); !ok {
		t.Fatalf("expected file store, got %T", s.Store)
	}
	if s.Watcher == nil {
		t.Fatalf("expected a watcher for the file store")
	}
	if s.View == nil || s.View.Direction != layout.Direction(lib.Layout.Direction) {
		t.Fatalf("expected view direction to default from the library, got %#v", s.View)
	}

	for _, p := range []paper.Paper{
		{ID: "a", Title: "A", Authors: []string{"Ng"}, Year: 2020, Category: paper.CategoryCNN},
		{ID: "b", Title: "B", Authors: []string{"Li"}, Year: 2021, Category: paper.CategoryCNN},
	} {
		if _, err := s.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper(%s) returned error: %v", p.ID, err)
		}
	}
	if _, _, err := s.Corpus.AddRelationship(ctx, paper.Relationship{
		From: "b", To: "a", Type: paper.Extends, Strength: 6,
	}); err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}

	s.View.Hide("a")
	opts, err := s.BuildOptions()
	if err != nil {
		t.Fatalf("BuildOptions returned error: %v", err)
	}
	snap, err := s.Corpus.AcquireSnapshot(ctx)
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	g, err := graph.Build(snap.Papers, snap.Relationships, opts)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "b" {
		t.Fatalf("expected only b to remain visible, got %#v", g.Nodes)
	}
	if len(g.Edges) != 0 {
		t.Fatalf("expected hidden paper's edge to be dropped, got %#v", g.Edges)
	}

	if err := s.SaveView(); err != nil {
		t.Fatalf("SaveView returned error: %v", err)
	}
	view, err := LoadViewState(lib.Dir)
	if err != nil {
		t.Fatalf("LoadViewState returned error: %v", err)
	}
	if !view.IsHidden("a") {
		t.Fatalf("expected hidden set to persist")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if s.Corpus != nil || s.Store != nil || s.Watcher != nil {
		t.Fatalf("expected Close to release resources")
	}
}

func TestOpenStoreRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	lib := config.NewLibrary(t.TempDir())
	lib.Store = "sqlite"
	if _, err := OpenStore(context.Background(), lib); err == nil {
		t.Fatalf("expected unknown store kind to fail")
	}
}
