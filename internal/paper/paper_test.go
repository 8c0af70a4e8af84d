package paper

import (
	"errors"
	"strings"
	"testing"
)

func TestFamiliarityRank(t *testing.T) {
	t.Parallel()

	if Familiarity("").Rank() != 0 {
		t.Fatalf("unset familiarity should rank as not_started")
	}
	for i, level := range FamiliarityLevels {
		if level.Rank() != i {
			t.Fatalf("expected %q to rank %d, got %d", level, i, level.Rank())
		}
	}
	if FamiliarityExpert.Rank() <= FamiliarityFamiliar.Rank() {
		t.Fatalf("expert must outrank familiar")
	}
}

func TestParseFamiliarity(t *testing.T) {
	t.Parallel()

	cases := map[string]Familiarity{
		"not started": FamiliarityNotStarted,
		"Moderate":    FamiliarityModerate,
		"4":           FamiliarityExpert,
		"":            "",
	}
	for input, want := range cases {
		got, err := ParseFamiliarity(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := ParseFamiliarity("guru"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestPaperValidate(t *testing.T) {
	t.Parallel()

	p := Paper{
		ID:       "vaswani2017attention",
		Title:    "Attention Is All You Need",
		Authors:  []string{"Ashish Vaswani"},
		Year:     2017,
		Category: CategoryTransformer,
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Authors = nil
	p.Importance = 6
	err := p.Validate()
	if !errors.Is(err, ErrInvalidPaper) {
		t.Fatalf("expected ErrInvalidPaper, got %v", err)
	}
	if !strings.Contains(err.Error(), "author") || !strings.Contains(err.Error(), "importance") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	got := NormalizeTags([]string{"Vision", " vision", "", "attention"})
	want := []string{"attention", "vision"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSuggestID(t *testing.T) {
	t.Parallel()

	got := SuggestID(Paper{
		Title:   "The Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:    2017,
	})
	if got != "vaswani2017attention" {
		t.Fatalf("unexpected id: %q", got)
	}

	if id := SuggestID(Paper{}); !strings.HasPrefix(id, "paper_") {
		t.Fatalf("expected random fallback id, got %q", id)
	}
}

func TestUniqueID(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"vaswani2017attention": true}
	id, err := UniqueID("vaswani2017attention", func(s string) bool { return taken[s] })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "vaswani2017attention" || !strings.HasPrefix(id, "vaswani2017attention_") {
		t.Fatalf("expected suffixed id, got %q", id)
	}
}

func TestCitation(t *testing.T) {
	t.Parallel()

	p := Paper{Title: "Deep Residual Learning.", Authors: []string{"He", "Zhang", "Ren"}, Year: 2016}
	if got := p.Citation(); got != "He et al. (2016). Deep Residual Learning." {
		t.Fatalf("unexpected citation: %q", got)
	}
}
