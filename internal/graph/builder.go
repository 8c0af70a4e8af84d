package graph

import (
	"fmt"
	"strings"

	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/paper"
)

const (
	minEdgeWidth = 1.0
	maxEdgeWidth = 4.0
)

type Node struct {
	ID          string            `json:"id"`
	Size        layout.Size       `json:"size"`
	Paper       paper.Paper       `json:"paper"`
	Familiarity paper.Familiarity `json:"familiarity"`
	Favorite    bool              `json:"favorite"`
	HasNotes    bool              `json:"has_notes"`
	Center      layout.Point      `json:"center"`
	Position    layout.Point      `json:"position"`
}

type Edge struct {
	ID          string                 `json:"id"`
	Source      string                 `json:"source"`
	Target      string                 `json:"target"`
	Type        paper.RelationshipType `json:"type"`
	Label       string                 `json:"label"`
	Description string                 `json:"description,omitempty"`
	Strength    int                    `json:"strength"`
	Width       float64                `json:"width"`
}

type Graph struct {
	Direction layout.Direction `json:"direction"`
	Nodes     []Node           `json:"nodes"`
	Edges     []Edge           `json:"edges"`
	Bounds    layout.Size      `json:"bounds"`
	LaidOut   bool             `json:"laid_out"`
}

type BuildOptions struct {
	Direction layout.Direction
	NodeSize  layout.Size
	Hidden    map[string]bool
	// Layout, when set, positions the nodes before Build returns.
	Layout layout.Engine
}

// EdgeWidth maps a strength onto the presentation width clamp(strength/3, 1, 4).
func EdgeWidth(strength int) float64 {
	w := float64(strength) / 3
	return min(max(w, minEdgeWidth), maxEdgeWidth)
}

// Build maps papers to nodes and relationships to display edges, in input
// order. Hidden papers and the edges touching them are left out.
func Build(papers []paper.Paper, rels []paper.Relationship, opts BuildOptions) (*Graph, error) {
	if opts.Direction == "" {
		opts.Direction = layout.TopBottom
	}
	if opts.NodeSize == (layout.Size{}) {
		opts.NodeSize = layout.DefaultNodeSize
	}

	g := &Graph{
		Direction: opts.Direction,
		Nodes:     make([]Node, 0, len(papers)),
		Edges:     make([]Edge, 0, len(rels)),
	}

	for _, p := range papers {
		if opts.Hidden[p.ID] {
			continue
		}
		g.Nodes = append(g.Nodes, Node{
			ID:          p.ID,
			Size:        opts.NodeSize,
			Paper:       p,
			Familiarity: p.Familiarity.Effective(),
			Favorite:    p.Favorite,
			HasNotes:    strings.TrimSpace(p.Notes) != "",
		})
	}

	for _, rel := range rels {
		if opts.Hidden[rel.From] || opts.Hidden[rel.To] {
			continue
		}
		source, target := rel.DisplayEdge()
		g.Edges = append(g.Edges, Edge{
			ID:          rel.ID,
			Source:      source,
			Target:      target,
			Type:        rel.Type,
			Label:       rel.Type.Label(),
			Description: rel.Description,
			Strength:    rel.Strength,
			Width:       EdgeWidth(rel.Strength),
		})
	}

	if opts.Layout != nil {
		if err := g.ApplyLayout(opts.Layout); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ApplyLayout runs engine over the graph and stores both the center anchor and
// the top-left position of every node.
func (g *Graph) ApplyLayout(engine layout.Engine) error {
	nodes := make([]layout.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = layout.Node{ID: n.ID, Size: n.Size}
	}
	edges := make([]layout.Edge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = layout.Edge{Source: e.Source, Target: e.Target}
	}

	centers, err := engine.Layout(nodes, edges)
	if err != nil {
		return fmt.Errorf("failed to lay out graph: %w", err)
	}

	for i := range g.Nodes {
		center, ok := centers[g.Nodes[i].ID]
		if !ok {
			continue
		}
		g.Nodes[i].Center = center
		g.Nodes[i].Position = layout.TopLeft(center, g.Nodes[i].Size)
	}
	g.Bounds = layout.Bounds(nodes, centers)
	g.LaidOut = true
	return nil
}

// Node returns the node with id, if present.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
