package review

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/paper"
)

func TestRunChecklistCollectsUpdates(t *testing.T) {
	t.Parallel()

	queue := []QueueItem{
		{Paper: paper.Paper{ID: "a", Title: "Alpha", Year: 2020}, Reason: "not started"},
		{Paper: paper.Paper{ID: "b", Title: "Beta", Year: 2019, Familiarity: paper.FamiliarityModerate, Importance: 2}, Reason: "moderate"},
		{Paper: paper.Paper{ID: "c", Title: "Gamma", Year: 2018}, Reason: "not started"},
	}

	input := strings.NewReader("familiar\n4\n\n\nq\n")
	var output bytes.Buffer

	updates, err := RunChecklist(queue, input, &output)
	if err != nil {
		t.Fatalf("RunChecklist returned error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected a single update, got %+v", updates)
	}

	got := updates[0]
	if got.PaperID != "a" || got.After != paper.FamiliarityFamiliar || got.ImportanceTo != 4 {
		t.Fatalf("unexpected update: %+v", got)
	}
	if got.Before != "" || got.ImportanceFrom != 0 {
		t.Fatalf("expected previous values recorded, got %+v", got)
	}

	out := output.String()
	if !strings.Contains(out, "[1/3] Alpha (2020)") || !strings.Contains(out, "Why now: moderate") {
		t.Fatalf("expected queue context in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Review complete. 1 papers updated.") {
		t.Fatalf("expected session summary, got:\n%s", out)
	}
}

func TestRunChecklistRejectsInvalidAnswers(t *testing.T) {
	t.Parallel()

	queue := []QueueItem{{Paper: paper.Paper{ID: "a", Title: "Alpha", Year: 2020}}}
	var output bytes.Buffer

	updates, err := RunChecklist(queue, strings.NewReader("guru\n9\n"), &output)
	if err != nil {
		t.Fatalf("RunChecklist returned error: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected invalid answers to keep values, got %+v", updates)
	}
	if !strings.Contains(output.String(), "Importance must be 1-5") {
		t.Fatalf("expected importance warning, got:\n%s", output.String())
	}
}
