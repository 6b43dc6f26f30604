// Package layout assigns positions to graph nodes with a ranked, layered
// layout: cycles are broken by reversing DFS back edges, nodes are ranked by
// longest path, layers are ordered with barycenter sweeps and coordinates are
// centred per layer.
//
// Positions are node centres, the first rank and the widest layer starting at
// half a node from the origin.
package layout

import (
	"sort"
	"time"

	"github.com/eventcatalog/catalog-engine/internal/graph"
	"github.com/eventcatalog/catalog-engine/internal/metrics"
)

type Direction string

const (
	LeftRight  Direction = "LR"
	TopBottom  Direction = "TB"
	sweepCount           = 4
)

type Options struct {
	Direction  Direction
	RankSep    float64
	NodeSep    float64
	NodeWidth  float64
	NodeHeight float64
}

// DefaultOptions returns LR, ranksep 300, nodesep 50 and 150x100 nodes.
func DefaultOptions() Options {
	return Options{
		Direction:  LeftRight,
		RankSep:    300,
		NodeSep:    50,
		NodeWidth:  150,
		NodeHeight: 100,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	return o
}

// Apply returns a copy of g with every node positioned. Edges are untouched.
// The result depends only on g and opts.
func Apply(g graph.Graph, opts Options) graph.Graph {
	start := time.Now()
	defer func() { metrics.LayoutDuration.Observe(time.Since(start).Seconds()) }()

	opts = opts.withDefaults()
	l := newLayered(g)
	l.breakCycles()
	l.rank()
	l.order()

	out := graph.Graph{
		Nodes: make([]graph.Node, len(g.Nodes)),
		Edges: g.Edges,
	}
	copy(out.Nodes, g.Nodes)
	positions := l.coordinates(opts)
	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
		if opts.Direction == TopBottom {
			out.Nodes[i].SourcePosition = "bottom"
			out.Nodes[i].TargetPosition = "top"
		}
	}
	return out
}

// layered is the working state of one layout pass. Nodes are addressed by
// their insertion index.
type layered struct {
	ids   []string
	succ  [][]int
	pred  [][]int
	ranks []int
	// layers[r] holds the nodes of rank r, in order.
	layers [][]int
	// slot[n] is the index of n within its layer.
	slot []int
}

func newLayered(g graph.Graph) *layered {
	l := &layered{}
	index := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := index[n.ID]; ok {
			continue
		}
		index[n.ID] = len(l.ids)
		l.ids = append(l.ids, n.ID)
	}
	l.succ = make([][]int, len(l.ids))

	type pair struct{ from, to int }
	seen := make(map[pair]bool, len(g.Edges))
	for _, e := range g.Edges {
		from, ok1 := index[e.Source]
		to, ok2 := index[e.Target]
		if !ok1 || !ok2 || from == to || seen[pair{from, to}] {
			continue
		}
		seen[pair{from, to}] = true
		l.succ[from] = append(l.succ[from], to)
	}
	return l
}

// breakCycles reverses every edge that closes a cycle in a depth-first walk
// started from each node in insertion order.
func (l *layered) breakCycles() {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(l.ids))
	acyclic := make([][]int, len(l.ids))

	var visit func(n int)
	visit = func(n int) {
		state[n] = active
		for _, m := range l.succ[n] {
			switch state[m] {
			case active:
				acyclic[m] = appendUnique(acyclic[m], n)
			case unvisited:
				acyclic[n] = appendUnique(acyclic[n], m)
				visit(m)
			default:
				acyclic[n] = appendUnique(acyclic[n], m)
			}
		}
		state[n] = done
	}
	for n := range l.ids {
		if state[n] == unvisited {
			visit(n)
		}
	}

	l.succ = acyclic
	l.pred = make([][]int, len(l.ids))
	for n, succ := range l.succ {
		for _, m := range succ {
			l.pred[m] = append(l.pred[m], n)
		}
	}
}

// rank assigns each node the length of the longest path reaching it.
func (l *layered) rank() {
	l.ranks = make([]int, len(l.ids))
	indegree := make([]int, len(l.ids))
	for n := range l.ids {
		indegree[n] = len(l.pred[n])
	}

	queue := make([]int, 0, len(l.ids))
	for n := range l.ids {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range l.succ[n] {
			if r := l.ranks[n] + 1; r > l.ranks[m] {
				l.ranks[m] = r
			}
			indegree[m]--
			if indegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	for n, r := range l.ranks {
		for len(l.layers) <= r {
			l.layers = append(l.layers, nil)
		}
		l.layers[r] = append(l.layers[r], n)
	}
	l.slot = make([]int, len(l.ids))
	l.renumber()
}

// order reduces crossings with alternating barycenter sweeps, downwards over
// predecessors and upwards over successors.
func (l *layered) order() {
	for i := 0; i < sweepCount; i++ {
		if i%2 == 0 {
			for r := 1; r < len(l.layers); r++ {
				l.sortLayer(r, l.pred)
			}
		} else {
			for r := len(l.layers) - 2; r >= 0; r-- {
				l.sortLayer(r, l.succ)
			}
		}
	}
}

func (l *layered) sortLayer(r int, neighbours [][]int) {
	layer := l.layers[r]
	weight := make(map[int]float64, len(layer))
	for _, n := range layer {
		adj := neighbours[n]
		if len(adj) == 0 {
			weight[n] = float64(l.slot[n])
			continue
		}
		sum := 0.0
		for _, m := range adj {
			sum += float64(l.slot[m])
		}
		weight[n] = sum / float64(len(adj))
	}
	sort.SliceStable(layer, func(i, j int) bool {
		return weight[layer[i]] < weight[layer[j]]
	})
	l.renumber()
}

func (l *layered) renumber() {
	for _, layer := range l.layers {
		for i, n := range layer {
			l.slot[n] = i
		}
	}
}

// coordinates centres every layer on the widest one.
func (l *layered) coordinates(opts Options) map[string]graph.Position {
	rankStep, rankSize := opts.NodeWidth+opts.RankSep, opts.NodeWidth
	slotStep, slotSize := opts.NodeHeight+opts.NodeSep, opts.NodeHeight
	if opts.Direction == TopBottom {
		rankStep, rankSize = opts.NodeHeight+opts.RankSep, opts.NodeHeight
		slotStep, slotSize = opts.NodeWidth+opts.NodeSep, opts.NodeWidth
	}

	widest := 0
	for _, layer := range l.layers {
		if len(layer) > widest {
			widest = len(layer)
		}
	}

	out := make(map[string]graph.Position, len(l.ids))
	for r, layer := range l.layers {
		offset := float64(widest-len(layer)) * slotStep / 2
		for i, n := range layer {
			along := rankSize/2 + float64(r)*rankStep
			across := slotSize/2 + offset + float64(i)*slotStep
			if opts.Direction == TopBottom {
				out[l.ids[n]] = graph.Position{X: across, Y: along}
			} else {
				out[l.ids[n]] = graph.Position{X: along, Y: across}
			}
		}
	}
	return out
}

func appendUnique(list []int, v int) []int {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
