package graph

import (
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/collections"
	"github.com/eventcatalog/catalog-engine/internal/metrics"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
)

type Options struct {
	// Mode defaults to simple.
	Mode Mode
	// RenderAllEdges shows both handles on message nodes of a service graph,
	// so sub-graphs can be chained.
	RenderAllEdges bool
	// RenderChannels routes edges of messages that declare channels through
	// channel nodes.
	RenderChannels bool
	// ChannelMode defaults to flat.
	ChannelMode ChannelMode
}

func (o Options) mode() Mode {
	if o.Mode == "" {
		return ModeSimple
	}
	return o.Mode
}

func (o Options) channelMode() ChannelMode {
	if o.ChannelMode == "" {
		return ChannelFlat
	}
	return o.ChannelMode
}

// Builder builds focus graphs over one enriched catalog snapshot. It never
// mutates the catalog and is safe for concurrent use.
type Builder struct {
	catalog  *collections.Catalog
	channels []catalog.Channel
}

func NewBuilder(c *collections.Catalog) *Builder {
	return &Builder{catalog: c, channels: c.RawChannels()}
}

// Build returns the graph centred on the resource id@version of the given
// role. version may be empty or "latest". It reports false when the role is
// unknown or the resource does not exist.
func (b *Builder) Build(role Role, id, version string, opts Options) (Graph, bool) {
	var (
		g  Graph
		ok bool
	)
	switch role {
	case RoleService:
		var s collections.Service
		if s, ok = b.catalog.Service(id, version); ok {
			g = b.service(s, opts)
		}
	case RoleMessage:
		var m collections.Message
		if m, ok = b.catalog.Message(id, version); ok {
			g = b.message(m, opts)
		}
	case RoleDomain:
		var d collections.Domain
		if d, ok = b.catalog.Domain(id, version); ok {
			g = b.domain(d, opts)
		}
	case RoleDataProduct:
		var dp collections.DataProduct
		if dp, ok = b.catalog.DataProduct(id, version); ok {
			g = b.dataProduct(dp, opts)
		}
	case RoleFlow:
		var f collections.Flow
		if f, ok = b.catalog.Flow(id, version); ok {
			g = b.flow(f, opts)
		}
	case RoleContainer:
		var c collections.Container
		if c, ok = b.catalog.Container(id, version); ok {
			g = b.container(c, opts)
		}
	}
	if !ok {
		return Graph{Nodes: []Node{}, Edges: []Edge{}}, false
	}
	metrics.GraphNodes.WithLabelValues(string(role)).Observe(float64(len(g.Nodes)))
	return g, true
}

func (b *Builder) service(s collections.Service, opts Options) Graph {
	acc := newAccumulator()
	svc := s.Resource
	receives, sends := s.Resolved.Receives, s.Resolved.Sends

	for _, m := range receives {
		acc.addNode(messageNode(m, opts, true, opts.RenderAllEdges, nil, []catalog.Ref{svc.Ref()}))
		b.connect(acc, m.Resource, svc, m, ReceiveLabel(m.Kind), opts)
	}

	acc.addNode(serviceNode(svc, opts, len(sends) > 0, len(receives) > 0))

	for _, m := range sends {
		acc.addNode(messageNode(m, opts, opts.RenderAllEdges, true, []catalog.Ref{svc.Ref()}, nil))
		b.connect(acc, svc, m.Resource, m, SendLabel(m.Kind), opts)
	}

	received := make(map[string]bool, len(receives))
	for _, m := range receives {
		received[m.NodeID()] = true
	}
	for _, m := range sends {
		if !received[m.NodeID()] {
			continue
		}
		label := SendLabel(m.Kind) + " & " + ReceiveLabel(m.Kind)
		acc.addEdge(newEdge(EdgeID(svc, m.Resource)+"-both", svc.NodeID(), m.NodeID(), label))
	}
	return acc.graph()
}

func (b *Builder) message(m collections.Message, opts Options) Graph {
	acc := newAccumulator()
	msg := m.Resource

	var produced []catalog.Channel
	for _, p := range m.Producers {
		acc.addNode(participantNode(p, opts, true, false))
		to := serviceChannels(p, msg.ID, opts, catalog.Service.SendChannels)
		if len(to) == 0 {
			b.connect(acc, p.Resource(), msg, m.Message, ProducerLabel(m.Kind), opts)
			continue
		}
		acc.addEdge(newEdge(EdgeID(p.Resource(), msg), p.Resource().NodeID(), msg.NodeID(), ProducerLabel(m.Kind)))
		for _, cp := range to {
			ch, ok := resolver.FindOne(b.channels, cp)
			if !ok {
				continue
			}
			produced = append(produced, ch)
			acc.addNode(channelNode(ch, opts))
			acc.addEdge(newEdge(EdgeID(msg, ch.Resource), msg.NodeID(), ch.NodeID(), routesLabel))
		}
	}

	acc.addNode(messageNode(m.Message, opts, len(m.Consumers) > 0, len(m.Producers) > 0, refs(m.Producers), refs(m.Consumers)))

	for _, c := range m.Consumers {
		acc.addNode(participantNode(c, opts, false, true))
		consumer := c.Resource()
		direct := newEdge(EdgeID(msg, consumer), msg.NodeID(), consumer.NodeID(), ConsumerLabel(m.Kind))

		from := serviceChannels(c, msg.ID, opts, catalog.Service.ReceiveChannels)
		if len(from) == 0 {
			acc.addEdge(direct)
			continue
		}
		for _, cp := range from {
			ch, ok := resolver.FindOne(b.channels, cp)
			if !ok {
				acc.addEdge(direct)
				continue
			}
			b.routeToConsumer(acc, msg, ch, consumer, produced, ConsumerLabel(m.Kind), opts)
		}
	}

	producers := make(map[catalog.Ref]bool, len(m.Producers))
	for _, p := range m.Producers {
		producers[p.Ref] = true
	}
	for _, c := range m.Consumers {
		if !producers[c.Ref] {
			continue
		}
		r := c.Resource()
		acc.addEdge(newEdge(EdgeID(msg, r)+"-both", msg.NodeID(), r.NodeID(), bothLabel))
	}
	return acc.graph()
}

// serviceChannels returns the channels a service participant names for
// messageID, or nil when channel rendering is off.
func serviceChannels(p resolver.Participant, messageID string, opts Options, named func(catalog.Service, string) []catalog.Pointer) []catalog.Pointer {
	if !opts.RenderChannels || p.Service == nil {
		return nil
	}
	return named(*p.Service, messageID)
}

// routeToConsumer links msg to consumer through ch. When a producer channel
// routes to ch, the whole chain from the producer channel is drawn instead.
func (b *Builder) routeToConsumer(acc *accumulator, msg catalog.Resource, ch catalog.Channel, consumer catalog.Resource, produced []catalog.Channel, label string, opts Options) {
	chained := false
	for _, pc := range produced {
		if chain := collections.ChannelChain(pc, ch, b.channels); len(chain) > 0 {
			addChain(acc, msg, chain, consumer, label, opts)
			chained = true
		}
	}
	if !chained {
		addChain(acc, msg, []catalog.Channel{ch}, consumer, label, opts)
	}
}

func addChain(acc *accumulator, msg catalog.Resource, chain []catalog.Channel, consumer catalog.Resource, label string, opts Options) {
	prev := msg
	for _, ch := range chain {
		acc.addNode(channelNode(ch, opts))
		acc.addEdge(newEdge(EdgeID(prev, ch.Resource), prev.NodeID(), ch.NodeID(), routesLabel))
		prev = ch.Resource
	}
	acc.addEdge(newEdge(EdgeID(prev, consumer), prev.NodeID(), consumer.NodeID(), label))
}

// domain merges the service graphs of every domain service, sub-domain
// services included, then attaches the data products that produce or
// consume the messages in it.
func (b *Builder) domain(d collections.Domain, opts Options) Graph {
	groups := make(map[string]*Group)
	for _, sub := range d.Resolved.Domains {
		g := group(sub.Resource)
		for _, s := range sub.Resolved.Services {
			if _, ok := groups[s.NodeID()]; !ok {
				groups[s.NodeID()] = g
			}
		}
	}
	own := group(d.Resource)

	serviceOpts := opts
	serviceOpts.RenderAllEdges = true

	subgraphs := make([]Graph, 0, len(d.Resolved.Services))
	for _, ds := range d.Resolved.Services {
		s, ok := b.catalog.Service(ds.ID, ds.Version)
		if !ok {
			s = ds
		}
		sg := b.service(s, serviceOpts)
		g, ok := groups[s.NodeID()]
		if !ok {
			g = own
		}
		for i := range sg.Nodes {
			if sg.Nodes[i].ID == s.NodeID() {
				sg.Nodes[i].Data.Group = g
			}
		}
		subgraphs = append(subgraphs, sg)
	}
	merged := Merge(subgraphs...)

	acc := newAccumulator()
	for _, n := range merged.Nodes {
		acc.addNode(n)
	}
	for _, e := range merged.Edges {
		acc.addEdge(e)
	}
	for _, n := range merged.Nodes {
		if n.Data.Message == nil {
			continue
		}
		m, ok := b.catalog.Message(n.Data.Message.ID, n.Data.Message.Version)
		if !ok {
			continue
		}
		msg := m.Resource
		for _, p := range m.Producers {
			if p.DataProduct == nil {
				continue
			}
			acc.addNode(participantNode(p, opts, true, true))
			acc.addNode(messageNode(m.Message, opts, false, true, []catalog.Ref{p.Ref}, nil))
			acc.addEdge(newEdge(EdgeID(p.Resource(), msg), p.Resource().NodeID(), msg.NodeID(), ProducerLabel(m.Kind)))
		}
		for _, c := range m.Consumers {
			if c.DataProduct == nil {
				continue
			}
			acc.addNode(participantNode(c, opts, true, true))
			acc.addNode(messageNode(m.Message, opts, true, false, nil, []catalog.Ref{c.Ref}))
			acc.addEdge(newEdge(EdgeID(msg, c.Resource()), msg.NodeID(), c.Resource().NodeID(), ConsumerLabel(m.Kind)))
		}
	}
	return acc.graph()
}

// dataProduct renders inputs with the services producing them and outputs
// with the services consuming them.
func (b *Builder) dataProduct(dp collections.DataProduct, opts Options) Graph {
	acc := newAccumulator()
	product := dp.Resource
	inputs, outputs := dp.Resolved.Inputs, dp.Resolved.Outputs

	for _, in := range inputs {
		acc.addNode(messageNode(in, opts, true, false, nil, []catalog.Ref{product.Ref()}))
		acc.addEdge(dataEdge(EdgeID(in.Resource, product), in.NodeID(), product.NodeID(), inputLabel))

		m, ok := b.catalog.Message(in.ID, in.Version)
		if !ok {
			continue
		}
		for _, p := range m.Producers {
			if p.Service == nil {
				continue
			}
			acc.addNode(participantNode(p, opts, true, false))
			acc.addNode(messageNode(in, opts, false, true, []catalog.Ref{p.Ref}, nil))
			b.connect(acc, p.Resource(), in.Resource, in, ProducerLabel(in.Kind), opts)
		}
	}

	acc.addNode(newNode(product.NodeID(), TypeDataProduct, NodeData{
		Mode:        opts.mode(),
		ShowSource:  len(outputs) > 0,
		ShowTarget:  len(inputs) > 0,
		DataProduct: ptr(payload(product)),
	}))

	for _, out := range outputs {
		acc.addNode(messageNode(out, opts, false, true, []catalog.Ref{product.Ref()}, nil))
		acc.addEdge(dataEdge(EdgeID(product, out.Resource), product.NodeID(), out.NodeID(), outputLabel))

		m, ok := b.catalog.Message(out.ID, out.Version)
		if !ok {
			continue
		}
		for _, c := range m.Consumers {
			if c.Service == nil {
				continue
			}
			acc.addNode(participantNode(c, opts, false, true))
			acc.addNode(messageNode(out, opts, true, false, nil, []catalog.Ref{c.Ref}))
			acc.addEdge(newEdge(EdgeID(out.Resource, c.Resource()), out.NodeID(), c.Resource().NodeID(), ConsumerLabel(out.Kind)))
		}
	}
	return acc.graph()
}

// flow renders one node per step and one edge per step transition.
func (b *Builder) flow(f collections.Flow, opts Options) Graph {
	acc := newAccumulator()
	for _, s := range f.ResolvedSteps {
		acc.addNode(stepNode(s, opts))
	}
	for _, s := range f.ResolvedSteps {
		for _, next := range s.Next {
			acc.addEdge(flowEdge(stepNodeID(s.ID), stepNodeID(next.StepID), next.Label))
		}
	}
	return acc.graph()
}

// container renders the services writing to c on its left and the ones
// reading from it on its right. A service doing both gets a single edge.
func (b *Builder) container(c collections.Container, opts Options) Graph {
	acc := newAccumulator()
	ctr := c.Resource
	writers, readers := c.Resolved.WrittenBy, c.Resolved.ReadBy

	writes := make(map[string]bool, len(writers))
	for _, s := range writers {
		writes[s.NodeID()] = true
	}
	reads := make(map[string]bool, len(readers))
	for _, s := range readers {
		reads[s.NodeID()] = true
	}

	for _, s := range writers {
		acc.addNode(serviceNode(s.Resource, opts, true, false))
		if !reads[s.NodeID()] {
			acc.addEdge(newEdge(EdgeID(s.Resource, ctr), s.NodeID(), ctr.NodeID(), writesLabel))
		}
	}

	acc.addNode(newNode(ctr.NodeID(), TypeContainer, NodeData{
		Mode:       opts.mode(),
		ShowSource: len(readers) > 0,
		ShowTarget: len(writers) > 0,
		Container:  ptr(payload(ctr)),
	}))

	for _, s := range readers {
		acc.addNode(serviceNode(s.Resource, opts, false, true))
		if !writes[s.NodeID()] {
			e := newEdge(EdgeID(s.Resource, ctr), ctr.NodeID(), s.NodeID(), readsLabel)
			e.MarkerStart = ptr(e.MarkerEnd)
			acc.addEdge(e)
		}
	}

	for _, s := range writers {
		if !reads[s.NodeID()] {
			continue
		}
		e := newEdge(EdgeID(ctr, s.Resource)+"-both", s.NodeID(), ctr.NodeID(), readWritesLabel)
		e.MarkerStart = ptr(e.MarkerEnd)
		acc.addEdge(e)
	}
	return acc.graph()
}

// connect links source to target, through the channels of m when channel
// rendering is on and m declares resolvable channels.
func (b *Builder) connect(acc *accumulator, source, target catalog.Resource, m catalog.Message, label string, opts Options) {
	if opts.RenderChannels {
		if channels := b.channelsOf(m); len(channels) > 0 {
			for _, ch := range channels {
				b.connectThrough(acc, source, target, ch, label, opts)
			}
			return
		}
	}
	acc.addEdge(newEdge(EdgeID(source, target), source.NodeID(), target.NodeID(), label))
}

func (b *Builder) connectThrough(acc *accumulator, source, target catalog.Resource, ch catalog.Channel, label string, opts Options) {
	id := JoinedID(source, ch.Resource, target)
	if opts.channelMode() == ChannelSingle {
		id = ch.NodeID()
	}
	if !acc.hasNode(id) {
		src, tgt := source.Ref(), target.Ref()
		acc.addNode(newNode(id, TypeChannel, NodeData{
			Mode:       opts.mode(),
			Title:      ch.ID,
			ShowSource: true,
			ShowTarget: true,
			Channel: &ChannelPayload{
				ResourcePayload: payload(ch.Resource),
				Address:         ch.Address,
				Protocols:       ch.Protocols,
				ChannelMode:     opts.channelMode(),
				Source:          &src,
				Target:          &tgt,
			},
		}))
	}
	acc.addEdge(newEdge(JoinedID(source, ch.Resource, target), source.NodeID(), id, ""))
	acc.addEdge(newEdge(JoinedID(ch.Resource, target, source), id, target.NodeID(), label))
}

func (b *Builder) channelsOf(m catalog.Message) []catalog.Channel {
	var out []catalog.Channel
	for _, p := range m.Channels {
		if ch, ok := resolver.FindOne(b.channels, p); ok {
			out = append(out, ch)
		}
	}
	return out
}

func serviceNode(r catalog.Resource, opts Options, showSource, showTarget bool) Node {
	return newNode(r.NodeID(), TypeService, NodeData{
		Mode:       opts.mode(),
		ShowSource: showSource,
		ShowTarget: showTarget,
		Service:    ptr(payload(r)),
	})
}

// channelNode is shared by every route through ch.
func channelNode(ch catalog.Channel, opts Options) Node {
	return newNode(ch.NodeID(), TypeChannel, NodeData{
		Mode:       opts.mode(),
		Title:      ch.ID,
		ShowSource: true,
		ShowTarget: true,
		Channel: &ChannelPayload{
			ResourcePayload: payload(ch.Resource),
			Address:         ch.Address,
			Protocols:       ch.Protocols,
			ChannelMode:     ChannelSingle,
		},
	})
}

func messageNode(m catalog.Message, opts Options, showSource, showTarget bool, producedBy, consumedBy []catalog.Ref) Node {
	return newNode(m.NodeID(), string(m.Kind.Collection()), NodeData{
		Mode:       opts.mode(),
		ShowSource: showSource,
		ShowTarget: showTarget,
		Message: &MessagePayload{
			ResourcePayload: payload(m.Resource),
			ProducedBy:      producedBy,
			ConsumedBy:      consumedBy,
		},
	})
}

func participantNode(p resolver.Participant, opts Options, showSource, showTarget bool) Node {
	r := p.Resource()
	if p.Kind == catalog.KindDataProduct {
		return newNode(r.NodeID(), TypeDataProduct, NodeData{
			Mode:        opts.mode(),
			ShowSource:  showSource,
			ShowTarget:  showTarget,
			DataProduct: ptr(payload(r)),
		})
	}
	return serviceNode(r, opts, showSource, showTarget)
}

func stepNodeID(id string) string { return "step-" + id }

// stepNode is typed after the resource the step references, or TypeStep
// when it references none or the reference did not resolve.
func stepNode(s collections.FlowStep, opts Options) Node {
	data := NodeData{
		Mode:       opts.mode(),
		Title:      s.Title,
		ShowSource: true,
		ShowTarget: true,
		Step:       &StepPayload{ID: s.ID, Title: s.Title, Summary: s.Summary},
	}
	typ := TypeStep
	switch {
	case s.Service != nil:
		if s.ResolvedService != nil {
			typ = TypeService
			data.Service = ptr(payload(s.ResolvedService.Resource))
		}
	case s.Flow != nil:
		if s.ResolvedFlow != nil {
			typ = TypeFlow
			data.Flow = ptr(payload(s.ResolvedFlow.Resource))
		}
	case s.Message != nil:
		if m := s.ResolvedMessage; m != nil {
			typ = string(m.Kind.Collection())
			data.Message = &MessagePayload{ResourcePayload: payload(m.Resource)}
		}
	}
	return newNode(stepNodeID(s.ID), typ, data)
}

func flowEdge(source, target, label string) Edge {
	e := newEdge(source+"-"+target, source, target, label)
	e.Type = "flow-edge"
	e.Animated = true
	e.Style = EdgeStyle{StrokeWidth: 2, Stroke: "#ccc"}
	e.MarkerEnd = Marker{Type: "arrowclosed", Color: "#666", Width: 20, Height: 20}
	return e
}

func dataEdge(id, source, target, label string) Edge {
	e := newEdge(id, source, target, label)
	e.Type = "animated"
	e.MarkerEnd.Color = "#666"
	return e
}

func group(r catalog.Resource) *Group {
	return &Group{ID: r.ID, Version: r.Version, Label: r.DisplayName()}
}

func refs(ps []resolver.Participant) []catalog.Ref {
	if len(ps) == 0 {
		return nil
	}
	out := make([]catalog.Ref, len(ps))
	for i, p := range ps {
		out[i] = p.Ref
	}
	return out
}

func ptr[T any](v T) *T { return &v }
