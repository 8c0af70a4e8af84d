package layout

import (
	"fmt"
	"slices"
	"sort"
)

// Layered is a hierarchical (Sugiyama style) layout: cycles are broken by
// reversing DFS back edges, nodes are ranked by longest path, long edges are
// split with virtual nodes, rank order is improved with barycenter sweeps and
// coordinates are assigned rank by rank.
type Layered struct {
	opts Options
}

func NewLayered(opts Options) *Layered {
	defaults := DefaultOptions()
	if opts.Direction == "" {
		opts.Direction = defaults.Direction
	}
	if opts.NodeSpacing <= 0 {
		opts.NodeSpacing = defaults.NodeSpacing
	}
	if opts.RankSpacing <= 0 {
		opts.RankSpacing = defaults.RankSpacing
	}
	if opts.Sweeps <= 0 {
		opts.Sweeps = defaults.Sweeps
	}
	return &Layered{opts: opts}
}

func (l *Layered) Options() Options {
	return l.opts
}

type layeredGraph struct {
	sizes  []Size
	real   int
	rank   []int
	succ   [][]int
	pred   [][]int
	layers [][]int
}

func (l *Layered) Layout(nodes []Node, edges []Edge) (map[string]Point, error) {
	positions := make(map[string]Point, len(nodes))
	if len(nodes) == 0 {
		return positions, nil
	}

	index := make(map[string]int, len(nodes))
	sizes := make([]Size, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("duplicate layout node %q", n.ID)
		}
		index[n.ID] = i
		sizes[i] = n.Size
	}

	pairs := make([][2]int, 0, len(edges))
	for _, e := range edges {
		u, okU := index[e.Source]
		v, okV := index[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		pairs = append(pairs, [2]int{u, v})
	}

	acyclic := breakCycles(len(nodes), pairs)
	rank := assignRanks(len(nodes), acyclic)

	g := &layeredGraph{sizes: sizes, real: len(nodes), rank: rank}
	g.split(acyclic)
	g.buildLayers()
	g.reduceCrossings(l.opts.Sweeps)

	centers := g.coordinates(l.opts)
	for i, n := range nodes {
		positions[n.ID] = centers[i]
	}
	return positions, nil
}

// breakCycles reverses every back edge found by a DFS in input order. The
// result is acyclic and free of duplicate pairs.
func breakCycles(n int, pairs [][2]int) [][2]int {
	out := make([][]int, n)
	for i, p := range pairs {
		out[p[0]] = append(out[p[0]], i)
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, n)
	reversed := make([]bool, len(pairs))

	var visit func(v int)
	visit = func(v int) {
		state[v] = active
		for _, ei := range out[v] {
			w := pairs[ei][1]
			switch state[w] {
			case unvisited:
				visit(w)
			case active:
				reversed[ei] = true
			}
		}
		state[v] = done
	}
	for v := 0; v < n; v++ {
		if state[v] == unvisited {
			visit(v)
		}
	}

	seen := make(map[[2]int]bool, len(pairs))
	result := make([][2]int, 0, len(pairs))
	for i, p := range pairs {
		if reversed[i] {
			p = [2]int{p[1], p[0]}
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

// assignRanks gives each node the length of the longest path reaching it.
func assignRanks(n int, pairs [][2]int) []int {
	out := make([][]int, n)
	indegree := make([]int, n)
	for _, p := range pairs {
		out[p[0]] = append(out[p[0]], p[1])
		indegree[p[1]]++
	}

	rank := make([]int, n)
	queue := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if indegree[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range out[v] {
			rank[w] = max(rank[w], rank[v]+1)
			indegree[w]--
			if indegree[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	return rank
}

// split replaces edges spanning more than one rank with chains of zero sized
// virtual nodes so every edge joins adjacent ranks.
func (g *layeredGraph) split(pairs [][2]int) {
	g.succ = make([][]int, g.real)
	g.pred = make([][]int, g.real)

	link := func(u, v int) {
		g.succ[u] = append(g.succ[u], v)
		g.pred[v] = append(g.pred[v], u)
	}

	for _, p := range pairs {
		u, v := p[0], p[1]
		prev := u
		for r := g.rank[u] + 1; r < g.rank[v]; r++ {
			virtual := len(g.sizes)
			g.sizes = append(g.sizes, Size{})
			g.rank = append(g.rank, r)
			g.succ = append(g.succ, nil)
			g.pred = append(g.pred, nil)
			link(prev, virtual)
			prev = virtual
		}
		link(prev, v)
	}
}

func (g *layeredGraph) buildLayers() {
	depth := 0
	for _, r := range g.rank {
		depth = max(depth, r+1)
	}
	g.layers = make([][]int, depth)
	for v, r := range g.rank {
		g.layers[r] = append(g.layers[r], v)
	}
}

func (g *layeredGraph) positions() []int {
	pos := make([]int, len(g.rank))
	for _, layer := range g.layers {
		for i, v := range layer {
			pos[v] = i
		}
	}
	return pos
}

func (g *layeredGraph) reduceCrossings(sweeps int) {
	best := cloneLayers(g.layers)
	bestCrossings := g.crossings()

	for s := 0; s < sweeps && bestCrossings > 0; s++ {
		for i := 1; i < len(g.layers); i++ {
			g.orderByBarycenter(i, g.pred)
		}
		for i := len(g.layers) - 2; i >= 0; i-- {
			g.orderByBarycenter(i, g.succ)
		}
		if c := g.crossings(); c < bestCrossings {
			bestCrossings = c
			best = cloneLayers(g.layers)
		}
	}
	g.layers = best
}

// orderByBarycenter sorts layer i by the mean position of each node's
// neighbors in the adjacent layer. Nodes without neighbors keep their slot.
func (g *layeredGraph) orderByBarycenter(i int, neighbors [][]int) {
	pos := g.positions()
	layer := g.layers[i]
	bary := make(map[int]float64, len(layer))
	for _, v := range layer {
		adj := neighbors[v]
		if len(adj) == 0 {
			bary[v] = float64(pos[v])
			continue
		}
		sum := 0
		for _, w := range adj {
			sum += pos[w]
		}
		bary[v] = float64(sum) / float64(len(adj))
	}
	sort.SliceStable(layer, func(a, b int) bool {
		return bary[layer[a]] < bary[layer[b]]
	})
}

func (g *layeredGraph) crossings() int {
	pos := g.positions()
	total := 0
	for i := 0; i+1 < len(g.layers); i++ {
		var segments [][2]int
		for _, u := range g.layers[i] {
			for _, v := range g.succ[u] {
				segments = append(segments, [2]int{pos[u], pos[v]})
			}
		}
		for a := 0; a < len(segments); a++ {
			for b := a + 1; b < len(segments); b++ {
				sa, sb := segments[a], segments[b]
				if (sa[0] < sb[0] && sa[1] > sb[1]) || (sa[0] > sb[0] && sa[1] < sb[1]) {
					total++
				}
			}
		}
	}
	return total
}

func (g *layeredGraph) coordinates(opts Options) []Point {
	breadth := func(s Size) float64 {
		if opts.Direction == LeftRight {
			return s.Height
		}
		return s.Width
	}
	depth := func(s Size) float64 {
		if opts.Direction == LeftRight {
			return s.Width
		}
		return s.Height
	}

	spans := make([]float64, len(g.layers))
	thickness := make([]float64, len(g.layers))
	widest := 0.0
	for i, layer := range g.layers {
		for j, v := range layer {
			if j > 0 {
				spans[i] += opts.NodeSpacing
			}
			spans[i] += breadth(g.sizes[v])
			thickness[i] = max(thickness[i], depth(g.sizes[v]))
		}
		widest = max(widest, spans[i])
	}

	centers := make([]Point, len(g.sizes))
	rankStart := 0.0
	for i, layer := range g.layers {
		cursor := (widest - spans[i]) / 2
		along := rankStart + thickness[i]/2
		for _, v := range layer {
			b := breadth(g.sizes[v])
			across := cursor + b/2
			cursor += b + opts.NodeSpacing

			if opts.Direction == LeftRight {
				centers[v] = Point{X: along + opts.Margin.X, Y: across + opts.Margin.Y}
			} else {
				centers[v] = Point{X: across + opts.Margin.X, Y: along + opts.Margin.Y}
			}
		}
		rankStart += thickness[i] + opts.RankSpacing
	}
	return centers
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, layer := range layers {
		out[i] = slices.Clone(layer)
	}
	return out
}
