// Package layout assigns 2-D positions to the nodes of a directed graph.
//
// Engines return node centers. Renderers that place boxes by their top-left
// corner convert with TopLeft, i.e. position = anchor - size/2.
package layout

import (
	"fmt"
	"strings"
)

type Direction string

const (
	TopBottom Direction = "TB"
	LeftRight Direction = "LR"
)

func ParseDirection(raw string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "TB", "TD":
		return TopBottom, nil
	case "LR":
		return LeftRight, nil
	default:
		return "", fmt.Errorf("unknown layout direction %q (use TB or LR)", raw)
	}
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Size struct {
	Width  float64 `json:"width"  yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type Margin struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Node struct {
	ID   string
	Size Size
}

type Edge struct {
	Source string
	Target string
}

type Options struct {
	Direction   Direction `yaml:"direction"    json:"direction"`
	NodeSpacing float64   `yaml:"node_spacing" json:"node_spacing"`
	RankSpacing float64   `yaml:"rank_spacing" json:"rank_spacing"`
	Margin      Margin    `yaml:"margin"       json:"margin"`
	Sweeps      int       `yaml:"sweeps"       json:"sweeps"`
}

func DefaultOptions() Options {
	return Options{
		Direction:   TopBottom,
		NodeSpacing: 50,
		RankSpacing: 100,
		Margin:      Margin{X: 20, Y: 20},
		Sweeps:      4,
	}
}

// DefaultNodeSize matches the paper card drawn by the graph renderer.
var DefaultNodeSize = Size{Width: 220, Height: 80}

// Engine computes a center position for every node. Edges that reference
// unknown nodes are ignored.
type Engine interface {
	Layout(nodes []Node, edges []Edge) (map[string]Point, error)
}

// TopLeft converts a center anchor into the top-left corner of a box.
func TopLeft(anchor Point, size Size) Point {
	return Point{X: anchor.X - size.Width/2, Y: anchor.Y - size.Height/2}
}

// Bounds returns the extent of the laid out boxes including their sizes.
func Bounds(nodes []Node, centers map[string]Point) Size {
	var w, h float64
	for _, n := range nodes {
		c, ok := centers[n.ID]
		if !ok {
			continue
		}
		w = max(w, c.X+n.Size.Width/2)
		h = max(h, c.Y+n.Size.Height/2)
	}
	return Size{Width: w, Height: h}
}
