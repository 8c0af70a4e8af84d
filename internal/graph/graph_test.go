package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/paper"
)

func testPaper(id string, year int, category paper.Category, tags ...string) paper.Paper {
	return paper.Paper{
		ID:       id,
		Title:    strings.ToUpper(id) + " paper",
		Authors:  []string{"Author " + id},
		Year:     year,
		Category: category,
		Tags:     tags,
	}
}

func rel(id, from, to string, t paper.RelationshipType, strength int) paper.Relationship {
	return paper.Relationship{ID: id, From: from, To: to, Type: t, Strength: strength}
}

// scenarioCorpus is A (2018), B (2020) builds_on A with strength 9 and
// C (2020) related to A with strength 4.
func scenarioCorpus() ([]paper.Paper, []paper.Relationship) {
	papers := []paper.Paper{
		testPaper("a", 2018, paper.CategoryCNN),
		testPaper("b", 2020, paper.CategoryTransformer),
		testPaper("c", 2020, paper.CategoryCompression),
	}
	rels := []paper.Relationship{
		rel("r1", "b", "a", paper.BuildsOn, 9),
		rel("r2", "c", "a", paper.Related, 4),
	}
	return papers, rels
}

func TestBuildAdjacencySymmetric(t *testing.T) {
	t.Parallel()

	_, rels := scenarioCorpus()
	rels = append(rels,
		rel("r3", "a", "c", paper.ComparesWith, 7),
		rel("r4", "c", "ghost", paper.Applies, 2),
	)
	adj := BuildAdjacency(rels)

	if got := adj.NeighborIDs("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected neighbors of a: %v", got)
	}
	if !adj.Adjacent("ghost", "c") || !adj.Adjacent("c", "ghost") {
		t.Fatalf("expected dangling endpoint to be recorded structurally")
	}

	for key := range adj.Strengths {
		if adj.Strength(key.A, key.B) != adj.Strength(key.B, key.A) {
			t.Fatalf("strength map not symmetric for %+v", key)
		}
	}
	if adj.Strength("a", "c") != 7 || adj.Strength("c", "a") != 7 {
		t.Fatalf("expected max strength 7 between a and c, got %d", adj.Strength("a", "c"))
	}
	if adj.Strength("b", "c") != 0 {
		t.Fatalf("expected zero strength for unconnected pair")
	}
	if got := adj.SharedNeighbors("b", "c"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unexpected shared neighbors: %v", got)
	}
}

func TestEdgeWidthClamp(t *testing.T) {
	t.Parallel()

	cases := map[int]float64{1: 1, 3: 1, 6: 2, 9: 3, 10: 10.0 / 3, 12: 4, 13: 4, 0: 1}
	for strength, want := range cases {
		if got := EdgeWidth(strength); got != want {
			t.Fatalf("strength %d: expected width %v, got %v", strength, want, got)
		}
	}
	if got := EdgeWidth(4); got <= 1 || got >= 2 {
		t.Fatalf("expected fractional width for strength 4, got %v", got)
	}
}

func TestBuildGraph(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	papers[1].Favorite = true
	papers[1].Notes = "Strong baseline."
	rels = append(rels, rel("r3", "a", "c", paper.Inspires, 5))

	g, err := Build(papers, rels, BuildOptions{Direction: layout.LeftRight})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 3 {
		t.Fatalf("unexpected graph size: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Direction != layout.LeftRight {
		t.Fatalf("unexpected direction: %q", g.Direction)
	}

	b, _ := g.Node("b")
	if !b.Favorite || !b.HasNotes || b.Familiarity != paper.FamiliarityNotStarted {
		t.Fatalf("unexpected node state: %+v", b)
	}
	if b.Size != layout.DefaultNodeSize || b.Position != (layout.Point{}) {
		t.Fatalf("expected default size at origin, got %+v", b)
	}

	first := g.Edges[0]
	if first.Source != "a" || first.Target != "b" || first.Width != 3 || first.Label != "Builds on" {
		t.Fatalf("unexpected builds_on edge: %+v", first)
	}
	inspires := g.Edges[2]
	if inspires.Source != "a" || inspires.Target != "c" {
		t.Fatalf("expected inspires edge kept as authored, got %+v", inspires)
	}
}

func TestBuildGraphIdempotent(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	opts := BuildOptions{Layout: layout.NewLayered(layout.DefaultOptions())}

	first, err := Build(papers, rels, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(papers, rels, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical graphs")
	}
}

func TestBuildGraphAppliesLayout(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	g, err := Build(papers, rels, BuildOptions{Layout: layout.NewLayered(layout.DefaultOptions())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.LaidOut {
		t.Fatalf("expected graph to be laid out")
	}

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	if a.Center.Y >= b.Center.Y {
		t.Fatalf("expected older paper above newer paper, got a=%+v b=%+v", a.Center, b.Center)
	}
	want := layout.Point{X: a.Center.X - a.Size.Width/2, Y: a.Center.Y - a.Size.Height/2}
	if a.Position != want {
		t.Fatalf("expected position = anchor - size/2, got %+v want %+v", a.Position, want)
	}
	if g.Bounds.Width <= 0 || g.Bounds.Height <= 0 {
		t.Fatalf("expected positive bounds, got %+v", g.Bounds)
	}
}

func TestBuildGraphHidesPapers(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	g, err := Build(papers, rels, BuildOptions{Hidden: map[string]bool{"c": true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("expected c and its edge hidden, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestResolveConnectionsExactlyOnce(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	papers = append(papers, testPaper("d", 2021, paper.CategoryOther))
	rels = append(rels,
		rel("r3", "d", "b", paper.Extends, 6),
		rel("r4", "b", "ghost", paper.Applies, 10),
		rel("r5", "c", "b", paper.ComparesWith, 3),
	)

	known := paper.Index(papers)
	for _, r := range rels {
		if _, ok := known[r.From]; !ok {
			continue
		}
		if _, ok := known[r.To]; !ok {
			continue
		}

		outCount := 0
		for _, c := range ResolveConnections(r.From, papers, rels) {
			if c.Relationship.ID == r.ID && c.Direction == Outgoing {
				outCount++
			}
		}
		inCount := 0
		for _, c := range ResolveConnections(r.To, papers, rels) {
			if c.Relationship.ID == r.ID && c.Direction == Incoming {
				inCount++
			}
		}
		if outCount != 1 || inCount != 1 {
			t.Fatalf("relationship %s: outgoing %d, incoming %d", r.ID, outCount, inCount)
		}
	}
}

func TestResolveConnectionsSortAndDangling(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	papers = append(papers, testPaper("d", 2021, paper.CategoryOther))
	rels = append(rels,
		rel("r3", "d", "b", paper.Extends, 6),
		rel("r4", "b", "ghost", paper.Applies, 10),
		rel("r5", "b", "c", paper.ComparesWith, 6),
	)

	got := ResolveConnections("b", papers, rels)
	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.Relationship.ID
	}
	// r4 is dangling; r3 and r5 tie on strength and d is newer than c.
	want := []string{"r1", "r3", "r5"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	if got[0].Direction != Outgoing || got[0].Other.ID != "a" {
		t.Fatalf("unexpected first connection: %+v", got[0])
	}
	if got[1].Direction != Incoming || got[1].Other.ID != "d" {
		t.Fatalf("unexpected second connection: %+v", got[1])
	}

	outgoing, incoming := Split(got)
	if len(outgoing) != 2 || len(incoming) != 1 {
		t.Fatalf("unexpected split: %d outgoing, %d incoming", len(outgoing), len(incoming))
	}

	if len(ResolveConnections("nobody", papers, rels)) != 0 {
		t.Fatalf("expected no connections for unknown paper")
	}
}

func TestRecommendBridgesScenario(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	bridges := RecommendBridges("b", papers, rels, 5, DefaultWeights())
	if len(bridges) != 1 {
		t.Fatalf("expected a single bridge, got %+v", bridges)
	}

	got := bridges[0]
	if got.Paper.ID != "c" {
		t.Fatalf("expected c to be recommended, got %q", got.Paper.ID)
	}
	if got.Score < 6.2 {
		t.Fatalf("expected score of at least 6.2, got %v", got.Score)
	}
	// 4 + 2.2 structural, plus 1.25 for the same publication year.
	if got.Score != 7.45 {
		t.Fatalf("expected score 7.45, got %v", got.Score)
	}
	want := []string{"1 shared neighbor", "shared path strength 4", "published within 2 years"}
	if !reflect.DeepEqual(got.Reasons, want) {
		t.Fatalf("unexpected reasons: %v", got.Reasons)
	}
	if !reflect.DeepEqual(got.SharedNeighbors, []string{"a"}) {
		t.Fatalf("unexpected shared neighbors: %v", got.SharedNeighbors)
	}
}

func TestRecommendBridgesExcludesNeighbors(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	papers = append(papers,
		testPaper("d", 2019, paper.CategoryCNN, "vision"),
		testPaper("e", 2005, paper.CategoryOther),
	)
	rels = append(rels, rel("r3", "d", "a", paper.Extends, 2))

	adj := BuildAdjacency(rels)
	for _, target := range []string{"a", "b", "c", "d", "e"} {
		for _, b := range RecommendBridges(target, papers, rels, 0, DefaultWeights()) {
			if adj.Adjacent(target, b.Paper.ID) || b.Paper.ID == target {
				t.Fatalf("bridge %q recommended for its neighbor %q", b.Paper.ID, target)
			}
			if b.Score <= 0 {
				t.Fatalf("non-positive score kept: %+v", b)
			}
		}
	}
}

func TestRecommendBridgesSharedNeighborMonotonic(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	before := scoreOf(t, RecommendBridges("b", papers, rels, 0, DefaultWeights()), "c")

	papers = append(papers, testPaper("d", 1990, paper.CategoryOther))
	rels = append(rels,
		rel("r3", "b", "d", paper.Applies, 1),
		rel("r4", "c", "d", paper.Applies, 1),
	)
	after := scoreOf(t, RecommendBridges("b", papers, rels, 0, DefaultWeights()), "c")

	if after <= before {
		t.Fatalf("expected extra shared neighbor to raise score: before %v, after %v", before, after)
	}
}

func TestRecommendBridgesBoostsAndOrdering(t *testing.T) {
	t.Parallel()

	papers := []paper.Paper{
		testPaper("t", 2020, paper.CategoryTransformer, "attention", "nlp", "scaling", "efficiency"),
		testPaper("same", 2010, paper.CategoryTransformer),
		testPaper("tags", 2010, paper.CategoryOther, "Attention", "NLP", "scaling", "efficiency"),
		testPaper("none", 2001, paper.CategoryOther),
	}
	papers[1].Familiarity = paper.FamiliarityModerate
	papers[2].Importance = 5
	papers[3].Familiarity = paper.FamiliarityExpert

	got := RecommendBridges("t", papers, nil, 0, DefaultWeights())
	if len(got) != 2 {
		t.Fatalf("expected two candidates with positive scores, got %+v", got)
	}

	// tags: min(3, 4) * 1.2 + 5 * 0.45 = 5.85
	if got[0].Paper.ID != "tags" || got[0].Score != 5.85 {
		t.Fatalf("unexpected first bridge: %+v", got[0])
	}
	// same: 2.5 + 0.9 = 3.4
	if got[1].Paper.ID != "same" || got[1].Score != 3.4 {
		t.Fatalf("unexpected second bridge: %+v", got[1])
	}
	if !reflect.DeepEqual(got[1].Reasons, []string{"same category", "moderately familiar"}) {
		t.Fatalf("unexpected reasons: %v", got[1].Reasons)
	}

	limited := RecommendBridges("t", papers, nil, 1, DefaultWeights())
	if len(limited) != 1 || limited[0].Paper.ID != "tags" {
		t.Fatalf("expected limit to keep the top bridge, got %+v", limited)
	}
}

func TestRecommendBridgesRecencyAndFamiliarityRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		year        int
		familiarity paper.Familiarity
		wantScore   float64
		wantReasons []string
	}{
		{"not started", 2010, paper.FamiliarityNotStarted, 2.7, []string{"not yet studied", "importance 2/5"}},
		{"difficult", 2010, paper.FamiliarityDifficult, 2.7, []string{"found difficult", "importance 2/5"}},
		{"unset familiarity", 2010, "", 0.9, []string{"importance 2/5"}},
		{"gap of 2 years", 2018, paper.FamiliarityExpert, 2.15, []string{"published within 2 years", "importance 2/5"}},
		{"gap of 3 years", 2023, paper.FamiliarityExpert, 1.65, []string{"published within 5 years", "importance 2/5"}},
		{"gap of 5 years", 2015, paper.FamiliarityExpert, 1.65, []string{"published within 5 years", "importance 2/5"}},
		{"gap of 6 years", 2014, paper.FamiliarityExpert, 0.9, []string{"importance 2/5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			candidate := testPaper("x", tt.year, paper.CategoryOther)
			candidate.Familiarity = tt.familiarity
			candidate.Importance = 2
			papers := []paper.Paper{testPaper("t", 2020, paper.CategoryCNN), candidate}

			got := RecommendBridges("t", papers, nil, 0, DefaultWeights())
			if len(got) != 1 {
				t.Fatalf("expected one bridge, got %+v", got)
			}
			if got[0].Score != tt.wantScore {
				t.Fatalf("score = %v, want %v", got[0].Score, tt.wantScore)
			}
			if !reflect.DeepEqual(got[0].Reasons, tt.wantReasons) {
				t.Fatalf("reasons = %v, want %v", got[0].Reasons, tt.wantReasons)
			}
		})
	}
}

func TestRecommendBridgesTieBreaksOnYear(t *testing.T) {
	t.Parallel()

	papers := []paper.Paper{
		testPaper("t", 2000, paper.CategoryCNN),
		testPaper("older", 1980, paper.CategoryCNN),
		testPaper("newer", 1990, paper.CategoryCNN),
	}
	got := RecommendBridges("t", papers, nil, 0, DefaultWeights())
	if len(got) != 2 || got[0].Paper.ID != "newer" || got[1].Paper.ID != "older" {
		t.Fatalf("expected newer paper first on tied score, got %+v", got)
	}
}

func TestRecommendBridgesEmptyPool(t *testing.T) {
	t.Parallel()

	only := []paper.Paper{testPaper("solo", 2020, paper.CategoryCNN)}
	if got := RecommendBridges("solo", only, nil, 5, DefaultWeights()); len(got) != 0 {
		t.Fatalf("expected no bridges, got %+v", got)
	}
	if got := RecommendBridges("missing", only, nil, 5, DefaultWeights()); len(got) != 0 {
		t.Fatalf("expected no bridges for unknown target, got %+v", got)
	}
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := DefaultWeights()
	w.Path = -1
	if err := w.Validate(); err == nil {
		t.Fatalf("expected negative weight to be rejected")
	}
	w = DefaultWeights()
	w.RecencyMediumYears = 1
	if err := w.Validate(); err == nil {
		t.Fatalf("expected inverted recency windows to be rejected")
	}
}

func TestMemoReusesAdjacency(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	memo := NewMemo(4)

	first := memo.Adjacency(1, rels)
	second := memo.Adjacency(1, rels)
	if first != second {
		t.Fatalf("expected cached adjacency for the same revision")
	}

	direct := RecommendBridges("b", papers, rels, 0, DefaultWeights())
	memoized := memo.Bridges(1, "b", papers, rels, 0, DefaultWeights())
	if !reflect.DeepEqual(direct, memoized) {
		t.Fatalf("memoized bridges differ: %+v vs %+v", direct, memoized)
	}

	conns := memo.Connections(1, "a", papers, rels)
	if !reflect.DeepEqual(conns, ResolveConnections("a", papers, rels)) {
		t.Fatalf("memoized connections differ")
	}
}

func TestToDOT(t *testing.T) {
	t.Parallel()

	papers, rels := scenarioCorpus()
	papers[0].Title = `The "quoted" title`
	rels = append(rels, rel("r3", "b", "ghost", paper.Applies, 3))

	g, err := Build(papers, rels, BuildOptions{Direction: layout.LeftRight})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dot := g.ToDOT()

	for _, want := range []string{
		"rankdir=LR;",
		`"a" -> "b" [label="Builds on"`,
		`penwidth=3.00`,
		`The \"quoted\" title`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("expected DOT output to contain %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Fatalf("expected dangling edge to be skipped:\n%s", dot)
	}
}

func scoreOf(t *testing.T, bridges []Bridge, id string) float64 {
	t.Helper()
	for _, b := range bridges {
		if b.Paper.ID == id {
			return b.Score
		}
	}
	t.Fatalf("expected %q among bridges %+v", id, bridges)
	return 0
}
