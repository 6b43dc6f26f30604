package graph

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

// Merge combines graphs into one. Nodes sharing an id are merged with
// MergeNode; for edges sharing an id the last one wins. Output keeps the
// order in which ids were first seen.
func Merge(graphs ...Graph) Graph {
	acc := newAccumulator()
	for _, g := range graphs {
		for _, n := range g.Nodes {
			acc.addNode(n)
		}
		for _, e := range g.Edges {
			acc.addEdge(e)
		}
	}
	return acc.graph()
}

// MergeNode merges b into a:
//   - ShowSource and ShowTarget are OR-ed
//   - mode full dominates simple
//   - type, title, position and group keep the first non-empty value
//   - payloads keep the first non-nil value, with their lists concatenated
//     and deduplicated and their scalars first-non-empty
func MergeNode(a, b Node) Node {
	out := a
	out.Type = firstString(a.Type, b.Type)
	out.SourcePosition = firstString(a.SourcePosition, b.SourcePosition)
	out.TargetPosition = firstString(a.TargetPosition, b.TargetPosition)
	if out.Position == (Position{}) {
		out.Position = b.Position
	}

	d := &out.Data
	d.ShowSource = a.Data.ShowSource || b.Data.ShowSource
	d.ShowTarget = a.Data.ShowTarget || b.Data.ShowTarget
	d.Mode = mergeMode(a.Data.Mode, b.Data.Mode)
	d.Title = firstString(a.Data.Title, b.Data.Title)
	if d.Group == nil {
		d.Group = b.Data.Group
	}

	d.Service = mergeResource(a.Data.Service, b.Data.Service)
	d.DataProduct = mergeResource(a.Data.DataProduct, b.Data.DataProduct)
	d.Domain = mergeResource(a.Data.Domain, b.Data.Domain)
	d.Message = mergeMessage(a.Data.Message, b.Data.Message)
	d.Channel = mergeChannel(a.Data.Channel, b.Data.Channel)
	d.Flow = mergeResource(a.Data.Flow, b.Data.Flow)
	d.Container = mergeResource(a.Data.Container, b.Data.Container)
	if d.Step == nil {
		d.Step = b.Data.Step
	}
	return out
}

func mergeMode(a, b Mode) Mode {
	if a == ModeFull || b == ModeFull {
		return ModeFull
	}
	return firstString(a, b)
}

func mergeResource(a, b *ResourcePayload) *ResourcePayload {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := mergeResourceValue(*a, *b)
	return &out
}

func mergeResourceValue(a, b ResourcePayload) ResourcePayload {
	out := a
	if out.Ref == (catalog.Ref{}) {
		out.Ref = b.Ref
	}
	out.Name = firstString(a.Name, b.Name)
	out.Summary = firstString(a.Summary, b.Summary)
	out.Owners = union(a.Owners, b.Owners)
	return out
}

func mergeMessage(a, b *MessagePayload) *MessagePayload {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &MessagePayload{
		ResourcePayload: mergeResourceValue(a.ResourcePayload, b.ResourcePayload),
		ProducedBy:      union(a.ProducedBy, b.ProducedBy),
		ConsumedBy:      union(a.ConsumedBy, b.ConsumedBy),
	}
}

func mergeChannel(a, b *ChannelPayload) *ChannelPayload {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := *a
	out.ResourcePayload = mergeResourceValue(a.ResourcePayload, b.ResourcePayload)
	out.Address = firstString(a.Address, b.Address)
	out.Protocols = union(a.Protocols, b.Protocols)
	out.ChannelMode = firstString(a.ChannelMode, b.ChannelMode)
	if out.Source == nil {
		out.Source = b.Source
	}
	if out.Target == nil {
		out.Target = b.Target
	}
	return &out
}

func firstString[S ~string](a, b S) S {
	if a != "" {
		return a
	}
	return b
}

// union concatenates a and b, dropping repeats and keeping first order.
func union[T comparable](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := sets.New[T]()
	out := make([]T, 0, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, v := range list {
			if seen.Has(v) {
				continue
			}
			seen.Insert(v)
			out = append(out, v)
		}
	}
	return out
}

// accumulator collects nodes and edges by id in first-seen order.
type accumulator struct {
	nodes     map[string]Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string
}

func newAccumulator() *accumulator {
	return &accumulator{
		nodes: make(map[string]Node),
		edges: make(map[string]Edge),
	}
}

func (a *accumulator) addNode(n Node) {
	if existing, ok := a.nodes[n.ID]; ok {
		a.nodes[n.ID] = MergeNode(existing, n)
		return
	}
	a.nodes[n.ID] = n
	a.nodeOrder = append(a.nodeOrder, n.ID)
}

func (a *accumulator) hasNode(id string) bool {
	_, ok := a.nodes[id]
	return ok
}

func (a *accumulator) addEdge(e Edge) {
	if _, ok := a.edges[e.ID]; !ok {
		a.edgeOrder = append(a.edgeOrder, e.ID)
	}
	a.edges[e.ID] = e
}

func (a *accumulator) graph() Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(a.nodeOrder)),
		Edges: make([]Edge, 0, len(a.edgeOrder)),
	}
	for _, id := range a.nodeOrder {
		g.Nodes = append(g.Nodes, a.nodes[id])
	}
	for _, id := range a.edgeOrder {
		g.Edges = append(g.Edges, a.edges[id])
	}
	return g
}
