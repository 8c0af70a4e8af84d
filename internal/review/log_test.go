package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Paintersrp/citegraph/internal/paper"
)

func TestEnsureLogDir(t *testing.T) {
	t.Parallel()

	library := t.TempDir()
	dir, err := EnsureLogDir(library, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != filepath.Join(library, "reviews") {
		t.Fatalf("unexpected default dir: %q", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to be created: %v", err)
	}

	if _, err := EnsureLogDir(library, "../outside"); err == nil {
		t.Fatalf("expected error for directory outside the library")
	}
	if _, err := EnsureLogDir("", "reviews"); err == nil {
		t.Fatalf("expected error for missing library")
	}
}

func TestWriteMarkdownLogAppendsSessions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	updates := []Update{{
		PaperID:        "a",
		Title:          "Alpha",
		Before:         "",
		After:          paper.FamiliarityModerate,
		ImportanceFrom: 0,
		ImportanceTo:   4,
	}}
	queue := []QueueItem{{Paper: paper.Paper{ID: "a", Title: "Alpha", Year: 2020}, Reason: "not started"}}

	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	path, err := WriteMarkdownLog(dir, updates, queue, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "review-2024-03-01.md" {
		t.Fatalf("unexpected log name: %q", path)
	}

	second := first.Add(2 * time.Hour)
	if _, err := WriteMarkdownLog(dir, nil, nil, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"## Review - 2024-03-01T09:00:00Z",
		"**Alpha** (`a`): familiarity not started -> moderate, importance unrated -> 4/5",
		"- Alpha (2020): not started",
		"## Review - 2024-03-01T11:00:00Z",
		"_No papers changed._",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected log to contain %q:\n%s", want, content)
		}
	}
}

func TestListReviewLogsSortsNewestFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	if _, err := WriteMarkdownLog(dir, nil, nil, older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := WriteMarkdownLog(dir, nil, nil, newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := WriteMarkdownLog(dir, nil, nil, newer.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}

	logs, err := ListReviewLogs(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected two logs, got %+v", logs)
	}
	if logs[0].Filename != "review-2024-01-05.md" || logs[0].Sessions != 2 {
		t.Fatalf("unexpected newest log: %+v", logs[0])
	}
	if !logs[0].Timestamp.Equal(newer.Add(time.Hour)) {
		t.Fatalf("expected latest session timestamp, got %v", logs[0].Timestamp)
	}

	missing, err := ListReviewLogs(filepath.Join(dir, "missing"))
	if err != nil || missing != nil {
		t.Fatalf("expected nil result for missing directory, got %v (%v)", missing, err)
	}
}
