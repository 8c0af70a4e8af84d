package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// Weights tunes the bridge score. Each field scales one scoring rule.
type Weights struct {
	Neighbor            float64 `yaml:"neighbor"             json:"neighbor"`
	Path                float64 `yaml:"path"                 json:"path"`
	Category            float64 `yaml:"category"             json:"category"`
	Tag                 float64 `yaml:"tag"                  json:"tag"`
	TagCap              int     `yaml:"tag_cap"              json:"tag_cap"`
	RecencyClose        float64 `yaml:"recency_close"        json:"recency_close"`
	RecencyCloseYears   int     `yaml:"recency_close_years"  json:"recency_close_years"`
	RecencyMedium       float64 `yaml:"recency_medium"       json:"recency_medium"`
	RecencyMediumYears  int     `yaml:"recency_medium_years" json:"recency_medium_years"`
	LowFamiliarity      float64 `yaml:"low_familiarity"      json:"low_familiarity"`
	ModerateFamiliarity float64 `yaml:"moderate_familiarity" json:"moderate_familiarity"`
	Importance          float64 `yaml:"importance"           json:"importance"`
}

func DefaultWeights() Weights {
	return Weights{
		Neighbor:            4,
		Path:                0.55,
		Category:            2.5,
		Tag:                 1.2,
		TagCap:              3,
		RecencyClose:        1.25,
		RecencyCloseYears:   2,
		RecencyMedium:       0.75,
		RecencyMediumYears:  5,
		LowFamiliarity:      1.8,
		ModerateFamiliarity: 0.9,
		Importance:          0.45,
	}
}

// Validate rejects negative weights and inverted recency windows.
func (w Weights) Validate() error {
	values := map[string]float64{
		"neighbor":             w.Neighbor,
		"path":                 w.Path,
		"category":             w.Category,
		"tag":                  w.Tag,
		"recency_close":        w.RecencyClose,
		"recency_medium":       w.RecencyMedium,
		"low_familiarity":      w.LowFamiliarity,
		"moderate_familiarity": w.ModerateFamiliarity,
		"importance":           w.Importance,
	}
	for name, v := range values {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("bridge weight %q must not be negative", name)
		}
	}
	if w.TagCap < 0 {
		return fmt.Errorf("bridge tag cap must not be negative")
	}
	if w.RecencyCloseYears < 0 || w.RecencyMediumYears < w.RecencyCloseYears {
		return fmt.Errorf("bridge recency windows must satisfy 0 <= close <= medium")
	}
	return nil
}

type Bridge struct {
	Paper           paper.Paper `json:"paper"`
	Score           float64     `json:"score"`
	Reasons         []string    `json:"reasons"`
	SharedNeighbors []string    `json:"shared_neighbors,omitempty"`
}

// RecommendBridges ranks papers not yet linked to target by shared structure
// and topic. A limit of zero or less returns every candidate.
func RecommendBridges(
	target string,
	papers []paper.Paper,
	rels []paper.Relationship,
	limit int,
	weights Weights,
) []Bridge {
	return recommendBridges(target, papers, BuildAdjacency(rels), limit, weights)
}

func recommendBridges(
	target string,
	papers []paper.Paper,
	adj *Adjacency,
	limit int,
	w Weights,
) []Bridge {
	bridges := make([]Bridge, 0)

	var source paper.Paper
	found := false
	for _, p := range papers {
		if p.ID == target {
			source, found = p, true
			break
		}
	}
	if !found {
		return bridges
	}
	sourceTags := source.TagSet()

	for _, candidate := range papers {
		if candidate.ID == target || adj.Adjacent(target, candidate.ID) {
			continue
		}

		score, reasons, shared := scoreCandidate(source, sourceTags, candidate, adj, w)
		if score <= 0 {
			continue
		}
		bridges = append(bridges, Bridge{
			Paper:           candidate,
			Score:           score,
			Reasons:         reasons,
			SharedNeighbors: shared,
		})
	}

	sort.SliceStable(bridges, func(i, j int) bool {
		a, b := bridges[i], bridges[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Paper.Year != b.Paper.Year {
			return a.Paper.Year > b.Paper.Year
		}
		return a.Paper.ID < b.Paper.ID
	})

	if limit > 0 && len(bridges) > limit {
		bridges = bridges[:limit]
	}
	for i := range bridges {
		bridges[i].Score = round2(bridges[i].Score)
	}
	return bridges
}

func scoreCandidate(
	source paper.Paper,
	sourceTags map[string]struct{},
	candidate paper.Paper,
	adj *Adjacency,
	w Weights,
) (float64, []string, []string) {
	var score float64
	reasons := make([]string, 0, 7)

	shared := adj.SharedNeighbors(source.ID, candidate.ID)
	if n := len(shared); n > 0 {
		score += float64(n) * w.Neighbor
		reasons = append(reasons, plural(n, "shared neighbor", "shared neighbors"))

		pathStrength := 0
		for _, neighbor := range shared {
			pathStrength += min(adj.Strength(source.ID, neighbor), adj.Strength(candidate.ID, neighbor))
		}
		if pathStrength > 0 {
			score += float64(pathStrength) * w.Path
			reasons = append(reasons, fmt.Sprintf("shared path strength %d", pathStrength))
		}
	}

	if candidate.Category != "" && candidate.Category == source.Category {
		score += w.Category
		reasons = append(reasons, "same category")
	}

	sharedTags := 0
	for tag := range candidate.TagSet() {
		if _, ok := sourceTags[tag]; ok {
			sharedTags++
		}
	}
	if sharedTags > 0 {
		score += float64(min(w.TagCap, sharedTags)) * w.Tag
		reasons = append(reasons, plural(sharedTags, "shared tag", "shared tags"))
	}

	gap := candidate.Year - source.Year
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap <= w.RecencyCloseYears:
		score += w.RecencyClose
		reasons = append(reasons, fmt.Sprintf("published within %d years", w.RecencyCloseYears))
	case gap <= w.RecencyMediumYears:
		score += w.RecencyMedium
		reasons = append(reasons, fmt.Sprintf("published within %d years", w.RecencyMediumYears))
	}

	// Unset familiarity earns no boost; only an explicit rating does.
	switch candidate.Familiarity {
	case paper.FamiliarityNotStarted:
		score += w.LowFamiliarity
		reasons = append(reasons, "not yet studied")
	case paper.FamiliarityDifficult:
		score += w.LowFamiliarity
		reasons = append(reasons, "found difficult")
	case paper.FamiliarityModerate:
		score += w.ModerateFamiliarity
		reasons = append(reasons, "moderately familiar")
	}

	if candidate.Importance > 0 {
		score += float64(candidate.Importance) * w.Importance
		reasons = append(reasons, fmt.Sprintf("importance %d/5", candidate.Importance))
	}

	return score, reasons, shared
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
