package graph

import (
	"fmt"
	"strings"

	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/paper"
)

var familiarityFill = map[paper.Familiarity]string{
	paper.FamiliarityNotStarted: "#f2f2f2",
	paper.FamiliarityDifficult:  "#f9d6d5",
	paper.FamiliarityModerate:   "#fcefc7",
	paper.FamiliarityFamiliar:   "#d9efd5",
	paper.FamiliarityExpert:     "#c6e2f7",
}

// ToDOT renders the graph as Graphviz DOT. Edges whose endpoints are not
// nodes of the graph are skipped.
func (g *Graph) ToDOT() string {
	var sb strings.Builder

	rankdir := "TB"
	if g.Direction == layout.LeftRight {
		rankdir = "LR"
	}

	sb.WriteString("digraph Papers {\n")
	sb.WriteString(fmt.Sprintf("  rankdir=%s;\n", rankdir))
	sb.WriteString("  fontname=\"Helvetica\";\n")
	sb.WriteString("  node [fontname=\"Helvetica\" fontsize=10 shape=box style=\"rounded,filled\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\" fontsize=8];\n\n")

	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true

		label := fmt.Sprintf("%s\\n%s, %d",
			escapeDOTLabel(n.Paper.Title),
			escapeDOTLabel(n.Paper.FirstAuthor()),
			n.Paper.Year,
		)
		if n.Favorite {
			label = "★ " + label
		}
		attrs := fmt.Sprintf("label=\"%s\" fillcolor=\"%s\"", label, familiarityFill[n.Familiarity])
		if g.LaidOut {
			attrs += fmt.Sprintf(" pos=\"%.0f,%.0f!\"", n.Center.X, n.Center.Y)
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" [%s];\n", escapeDOTLabel(n.ID), attrs))
	}
	sb.WriteString("\n")

	for _, e := range g.Edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		color := "#555555"
		if info, ok := e.Type.Info(); ok {
			color = info.Color
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\" color=\"%s\" penwidth=%.2f];\n",
			escapeDOTLabel(e.Source),
			escapeDOTLabel(e.Target),
			escapeDOTLabel(e.Label),
			color,
			e.Width,
		))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOTLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
