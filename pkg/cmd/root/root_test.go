package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/state"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	home := t.TempDir()
	path := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return &state.State{Home: home, RootStatus: &state.RootStatus{}}
}

func runRoot(t *testing.T, s *state.State, args ...string) (string, error) {
	t.Helper()
	cmd, err := NewCmdRoot(s)
	if err != nil {
		t.Fatalf("NewCmdRoot returned error: %v", err)
	}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err = cmd.Execute()
	return out.String(), err
}

func TestInitThenUseLibrary(t *testing.T) {
	s := newTestState(t)
	dir := t.TempDir()

	out, err := runRoot(t, s, "init", dir, "--name", "ml")
	if err != nil {
		t.Fatalf("init returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, `Initialized file library "ml" at `+dir) {
		t.Fatalf("unexpected init output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "papers")); err != nil {
		t.Fatalf("expected the papers directory to be created: %v", err)
	}

	if out, err := runRoot(t, s, "paper", "add", "--id", "x", "--title", "Example",
		"--author", "Ng", "--year", "2020"); err != nil {
		t.Fatalf("paper add returned error: %v\n%s", err, out)
	}

	out, err = runRoot(t, s, "paper", "list")
	if err != nil {
		t.Fatalf("paper list returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 papers") {
		t.Fatalf("expected the added paper to be listed:\n%s", out)
	}
	if s.Corpus != nil {
		t.Fatalf("expected the library to be closed after the command")
	}
}

func TestUnknownLibraryOverride(t *testing.T) {
	s := newTestState(t)
	if _, err := runRoot(t, s, "init", t.TempDir(), "--name", "ml"); err != nil {
		t.Fatalf("init returned error: %v", err)
	}

	if _, err := runRoot(t, s, "--library", "missing", "paper", "list"); err == nil {
		t.Fatalf("expected an error for an unknown library")
	}
}

func TestCommandsNeedAnInitializedLibrary(t *testing.T) {
	s := newTestState(t)

	if _, err := runRoot(t, s, "paper", "list"); err == nil {
		t.Fatalf("expected an error before init")
	}
	if _, err := runRoot(t, s, "library", "list"); err != nil {
		t.Fatalf("library commands should not need an open library: %v", err)
	}
}
