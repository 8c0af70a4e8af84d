package render

import (
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
)

func TestPaperMarkdownIncludesDetails(t *testing.T) {
	t.Parallel()

	md := PaperMarkdown(paper.Paper{
		ID:          "vaswani2017attention",
		Title:       "Attention Is All You Need",
		Authors:     []string{"Vaswani", "Shazeer"},
		Year:        2017,
		Category:    paper.CategoryTransformer,
		Tags:        []string{"attention"},
		Familiarity: paper.FamiliarityFamiliar,
		Favorite:    true,
		Abstract:    "We propose the Transformer.",
		Notes:       "We propose the Transformer.",
	})

	for _, want := range []string{
		"# ★ Attention Is All You Need",
		"`vaswani2017attention`",
		"Vaswani, Shazeer",
		"**Category:** transformer",
		"## Abstract",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected markdown to contain %q, got:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Notes") {
		t.Fatalf("notes identical to the abstract should not repeat")
	}
}

func TestConnectionsMarkdownSplitsDirections(t *testing.T) {
	t.Parallel()

	md := ConnectionsMarkdown([]graph.Connection{
		{
			Relationship: paper.Relationship{Type: paper.Extends, Strength: 7},
			Other:        paper.Paper{Title: "ResNet", Year: 2016},
			Direction:    graph.Outgoing,
		},
		{
			Relationship: paper.Relationship{Type: paper.BuildsOn, Strength: 3},
			Other:        paper.Paper{Title: "ViT", Year: 2020},
			Direction:    graph.Incoming,
		},
	})

	out := strings.Index(md, "## Outgoing")
	in := strings.Index(md, "## Incoming")
	if out < 0 || in < 0 || out > in {
		t.Fatalf("expected outgoing then incoming sections, got:\n%s", md)
	}
	if !strings.Contains(md, "ResNet (2016) · strength 7") {
		t.Fatalf("missing outgoing connection line:\n%s", md)
	}
	if ConnectionsMarkdown(nil) != "_No connections._\n" {
		t.Fatalf("unexpected empty rendering")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("width 0 should not truncate, got %q", got)
	}
}
