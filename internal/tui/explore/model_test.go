package explore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
)

func newTestModel(t *testing.T) (*Model, *state.State) {
	t.Helper()
	ctx := context.Background()

	st, err := state.OpenLibrary(ctx, "test", config.NewLibrary(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenLibrary returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	for _, p := range []paper.Paper{
		{ID: "a", Title: "Alpha Nets", Authors: []string{"Ng"}, Year: 2018, Category: paper.CategoryCNN, Tags: []string{"vision"}},
		{ID: "b", Title: "Beta Transformers", Authors: []string{"Li"}, Year: 2020, Category: paper.CategoryTransformer, Tags: []string{"vision"}},
		{ID: "c", Title: "Gamma Codes", Authors: []string{"Ko"}, Year: 2020, Category: paper.CategoryCNN},
	} {
		if _, err := st.Corpus.AddPaper(ctx, p); err != nil {
			t.Fatalf("AddPaper returned error: %v", err)
		}
	}
	if _, _, err := st.Corpus.AddRelationship(ctx, paper.Relationship{From: "b", To: "a", Type: paper.BuildsOn, Strength: 8}); err != nil {
		t.Fatalf("AddRelationship returned error: %v", err)
	}

	m, err := NewModel(st)
	if err != nil {
		t.Fatalf("NewModel returned error: %v", err)
	}
	t.Cleanup(func() {
		if m.tags != nil {
			_ = m.tags.Close()
		}
	})

	m.Update(m.loadSnapshot()())
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return m, st
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSnapshotPopulatesListAndPanels(t *testing.T) {
	m, _ := newTestModel(t)

	if got := len(m.list.Items()); got != 3 {
		t.Fatalf("expected 3 papers in the list, got %d", got)
	}
	p, ok := m.selectedPaper()
	if !ok || p.ID != "a" {
		t.Fatalf("expected first paper to be selected, got %#v", p)
	}
	content := m.panels.View()
	if !strings.Contains(content, "DETAILS") || !strings.Contains(content, "CONNECTIONS") {
		t.Fatalf("expected default panels, got:\n%s", content)
	}
	if !strings.Contains(content, "Beta Transformers") {
		t.Fatalf("expected incoming connection in panels, got:\n%s", content)
	}
}

func TestTogglePanelPersistsView(t *testing.T) {
	m, st := newTestModel(t)

	_, cmd := m.Update(runes("3"))
	if !st.View.PanelOpen(state.PanelBridges) {
		t.Fatalf("expected bridges panel to open")
	}
	if cmd == nil {
		t.Fatalf("expected a save command")
	}
	cmd()

	view, err := state.LoadViewState(st.Dir)
	if err != nil {
		t.Fatalf("LoadViewState returned error: %v", err)
	}
	if !view.PanelOpen(state.PanelBridges) {
		t.Fatalf("expected persisted view to include bridges")
	}
	if !strings.Contains(m.panels.View(), "BRIDGES") {
		t.Fatalf("expected bridges panel to render")
	}
}

func TestHideRemovesPaperFromList(t *testing.T) {
	m, st := newTestModel(t)

	m.Update(runes("x"))
	if !st.View.IsHidden("a") {
		t.Fatalf("expected a to be hidden")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected hidden paper to leave the list, got %d items", got)
	}

	m.Update(runes("X"))
	if got := len(m.list.Items()); got != 3 {
		t.Fatalf("expected show hidden to list every paper, got %d", got)
	}
}

func TestTagEditQueuesReconcilerWrite(t *testing.T) {
	m, st := newTestModel(t)

	m.Update(runes("t"))
	if !m.editing {
		t.Fatalf("expected tag editing mode")
	}
	m.input.SetValue("Vision, Classic")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Fatalf("expected enter to leave editing mode")
	}

	if got := m.tags.Tags("a"); strings.Join(got, ",") != "classic,vision" {
		t.Fatalf("unexpected local tags %v", got)
	}
	if err := m.tags.Flush(context.Background()); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	snap, err := st.Corpus.AcquireSnapshot(context.Background())
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	a, _ := snap.Paper("a")
	if !a.HasTag("classic") {
		t.Fatalf("expected tags to be written to the store, got %v", a.Tags)
	}
}

func TestTagEditCancel(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(runes("t"))
	m.input.SetValue("changed")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing {
		t.Fatalf("expected esc to cancel editing")
	}
	if len(m.tags.Pending()) != 0 {
		t.Fatalf("expected no pending tag changes after cancel")
	}
}

func TestShutdownReportsViewSaveFailure(t *testing.T) {
	m, st := newTestModel(t)

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	st.Dir = blocker

	if cmd := m.shutdown(); cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if !strings.HasPrefix(m.status, "saving view failed:") {
		t.Fatalf("expected save failure in status, got %q", m.status)
	}
}
