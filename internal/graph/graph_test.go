package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/cache"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/collections"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

const sampleCatalog = "../../examples/catalog-sample"

func entry(c v1alpha1.Collection, d v1alpha1.Descriptor) v1alpha1.Entry {
	return v1alpha1.Entry{ID: string(c) + "/" + d.ID + "/" + string(d.Version), Collection: c, Data: d}
}

func declRefs(items ...string) []v1alpha1.Reference {
	out := make([]v1alpha1.Reference, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		out = append(out, v1alpha1.Reference{ID: items[i], Version: items[i+1]})
	}
	return out
}

func newBuilder(t *testing.T, repo store.Repository) *Builder {
	t.Helper()
	c, err := collections.NewEnricher(repo, cache.New(false)).Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog error: %v", err)
	}
	return NewBuilder(c)
}

func memoryBuilder(t *testing.T, entries ...v1alpha1.Entry) *Builder {
	return newBuilder(t, store.Typed(store.NewMemoryStore(entries...)))
}

func nodeIDs(g Graph) []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n.ID)
	}
	return out
}

type edgeSummary struct {
	ID, Source, Target, Label string
}

func edges(g Graph) []edgeSummary {
	out := make([]edgeSummary, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, edgeSummary{e.ID, e.Source, e.Target, e.Label})
	}
	return out
}

func mustNode(t *testing.T, g Graph, id string) Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %q not found in %v", id, nodeIDs(g))
	}
	return n
}

func TestBuild_MessageProducerAndConsumer(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "OrderPlaced", Version: "0.0.1"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "OrderService", Version: "1.0.0", Sends: declRefs("OrderPlaced", "0.0.1")}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "LocationService", Version: "1.0.0", Receives: declRefs("OrderPlaced", "0.0.1")}),
	)

	g, ok := b.Build(RoleMessage, "OrderPlaced", "0.0.1", Options{})
	if !ok {
		t.Fatalf("expected message graph")
	}
	if diff := cmp.Diff([]string{"OrderService-1.0.0", "OrderPlaced-0.0.1", "LocationService-1.0.0"}, nodeIDs(g)); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	want := []edgeSummary{
		{"OrderService-1.0.0-OrderPlaced-0.0.1", "OrderService-1.0.0", "OrderPlaced-0.0.1", "publishes event"},
		{"OrderPlaced-0.0.1-LocationService-1.0.0", "OrderPlaced-0.0.1", "LocationService-1.0.0", "subscribed by"},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	msg := mustNode(t, g, "OrderPlaced-0.0.1")
	if msg.Type != "events" || !msg.Data.ShowSource || !msg.Data.ShowTarget {
		t.Fatalf("unexpected message node: %+v", msg)
	}
	if msg.Data.Message.ProducedBy[0].ID != "OrderService" || msg.Data.Message.ConsumedBy[0].ID != "LocationService" {
		t.Fatalf("unexpected participants: %+v", msg.Data.Message)
	}
	if n := mustNode(t, g, "OrderService-1.0.0"); !n.Data.ShowSource || n.Data.ShowTarget {
		t.Fatalf("producer should only show its source handle: %+v", n.Data)
	}
	if n := mustNode(t, g, "LocationService-1.0.0"); n.Data.ShowSource || !n.Data.ShowTarget {
		t.Fatalf("consumer should only show its target handle: %+v", n.Data)
	}

	e, _ := g.Edge("OrderService-1.0.0-OrderPlaced-0.0.1")
	if e.Animated || e.MarkerEnd != (Marker{Type: "arrowclosed", Width: 40, Height: 40}) || e.Style.StrokeWidth != 1 {
		t.Fatalf("unexpected edge defaults: %+v", e)
	}
}

func TestBuild_MessageParticipantBothWays(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "Retry", Version: "1.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "Worker", Version: "1.0.0", Sends: declRefs("Retry", "1.0.0"), Receives: declRefs("Retry", "latest")}),
	)

	g, ok := b.Build(RoleMessage, "Retry", "", Options{})
	if !ok {
		t.Fatalf("expected message graph")
	}
	want := []edgeSummary{
		{"Worker-1.0.0-Retry-1.0.0", "Worker-1.0.0", "Retry-1.0.0", "invokes"},
		{"Retry-1.0.0-Worker-1.0.0", "Retry-1.0.0", "Worker-1.0.0", "accepts"},
		{"Retry-1.0.0-Worker-1.0.0-both", "Retry-1.0.0", "Worker-1.0.0", "publishes and subscribes"},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	n := mustNode(t, g, "Worker-1.0.0")
	if !n.Data.ShowSource || !n.Data.ShowTarget {
		t.Fatalf("participant on both sides should show both handles: %+v", n.Data)
	}
}

func TestBuild_ServiceLabelsAndHandles(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "Placed", Version: "1.0.0"}),
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "Place", Version: "1.0.0"}),
		entry(v1alpha1.CollectionQueries, v1alpha1.Descriptor{ID: "Get", Version: "1.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{
			ID:       "Orders",
			Version:  "1.0.0",
			Receives: declRefs("Place", "1.0.0", "Get", "1.0.0", "Placed", "1.0.0"),
			Sends:    declRefs("Placed", "1.0.0"),
		}),
	)

	g, ok := b.Build(RoleService, "Orders", "1.0.0", Options{Mode: ModeFull})
	if !ok {
		t.Fatalf("expected service graph")
	}
	want := []edgeSummary{
		{"Place-1.0.0-Orders-1.0.0", "Place-1.0.0", "Orders-1.0.0", "accepts"},
		{"Get-1.0.0-Orders-1.0.0", "Get-1.0.0", "Orders-1.0.0", "accepts"},
		{"Placed-1.0.0-Orders-1.0.0", "Placed-1.0.0", "Orders-1.0.0", "receives event"},
		{"Orders-1.0.0-Placed-1.0.0", "Orders-1.0.0", "Placed-1.0.0", "publishes event"},
		{"Orders-1.0.0-Placed-1.0.0-both", "Orders-1.0.0", "Placed-1.0.0", "publishes event & receives event"},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Place-1.0.0", "Get-1.0.0", "Placed-1.0.0", "Orders-1.0.0"}, nodeIDs(g)); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}

	svc := mustNode(t, g, "Orders-1.0.0")
	if svc.Type != TypeService || !svc.Data.ShowSource || !svc.Data.ShowTarget || svc.Data.Mode != ModeFull {
		t.Fatalf("unexpected service node: %+v", svc)
	}
	if n := mustNode(t, g, "Place-1.0.0"); n.Type != "commands" || !n.Data.ShowSource || n.Data.ShowTarget {
		t.Fatalf("received command should hide its target handle: %+v", n)
	}
	if n := mustNode(t, g, "Placed-1.0.0"); !n.Data.ShowSource || !n.Data.ShowTarget {
		t.Fatalf("message sent and received should show both handles: %+v", n.Data)
	}
}

func TestBuild_ServiceLatestSkipsHiddenVersion(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "Event", Version: "0.0.1"}),
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "Event", Version: "0.0.2", Hidden: true}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "Svc", Version: "1.0.0", Sends: declRefs("Event", "latest")}),
	)

	g, ok := b.Build(RoleService, "Svc", "1.0.0", Options{})
	if !ok {
		t.Fatalf("expected service graph")
	}
	if diff := cmp.Diff([]string{"Svc-1.0.0", "Event-0.0.1"}, nodeIDs(g)); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ServiceRangeFansOut(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "Cmd", Version: "1.0.0"}),
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "Cmd", Version: "1.2.0"}),
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "Cmd", Version: "2.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "Svc", Version: "1.0.0", Receives: declRefs("Cmd", "^1.0.0")}),
	)

	g, _ := b.Build(RoleService, "Svc", "1.0.0", Options{})
	if diff := cmp.Diff([]string{"Cmd-1.2.0", "Cmd-1.0.0", "Svc-1.0.0"}, nodeIDs(g)); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Channels(t *testing.T) {
	entries := []v1alpha1.Entry{
		entry(v1alpha1.CollectionChannels, v1alpha1.Descriptor{ID: "orders", Version: "1.0.0", Address: "orders.{env}"}),
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "Placed", Version: "1.0.0", Channels: declRefs("orders", "1.0.0")}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "A", Version: "1.0.0", Sends: declRefs("Placed", "1.0.0")}),
	}

	t.Run("flat", func(t *testing.T) {
		g, _ := memoryBuilder(t, entries...).Build(RoleService, "A", "1.0.0", Options{RenderChannels: true})
		channelID := "A-1.0.0-orders-1.0.0-Placed-1.0.0"
		want := []edgeSummary{
			{"A-1.0.0-orders-1.0.0-Placed-1.0.0", "A-1.0.0", channelID, ""},
			{"orders-1.0.0-Placed-1.0.0-A-1.0.0", channelID, "Placed-1.0.0", "publishes event"},
		}
		if diff := cmp.Diff(want, edges(g)); diff != "" {
			t.Fatalf("edges mismatch (-want +got):\n%s", diff)
		}
		ch := mustNode(t, g, channelID)
		if ch.Type != TypeChannel || ch.Data.Title != "orders" || ch.Data.Channel.ChannelMode != ChannelFlat {
			t.Fatalf("unexpected channel node: %+v", ch)
		}
		if ch.Data.Channel.Source.ID != "A" || ch.Data.Channel.Target.ID != "Placed" || ch.Data.Channel.Address != "orders.{env}" {
			t.Fatalf("unexpected channel payload: %+v", ch.Data.Channel)
		}
	})

	t.Run("single", func(t *testing.T) {
		g, _ := memoryBuilder(t, entries...).Build(RoleService, "A", "1.0.0", Options{RenderChannels: true, ChannelMode: ChannelSingle})
		if _, ok := g.Node("orders-1.0.0"); !ok {
			t.Fatalf("expected one node per channel, got %v", nodeIDs(g))
		}
	})

	t.Run("off", func(t *testing.T) {
		g, _ := memoryBuilder(t, entries...).Build(RoleService, "A", "1.0.0", Options{})
		want := []edgeSummary{{"A-1.0.0-Placed-1.0.0", "A-1.0.0", "Placed-1.0.0", "publishes event"}}
		if diff := cmp.Diff(want, edges(g)); diff != "" {
			t.Fatalf("edges mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBuild_MessageServiceChannels(t *testing.T) {
	via := func(to, from []v1alpha1.Reference) []v1alpha1.Reference {
		return []v1alpha1.Reference{{ID: "Placed", Version: "1.0.0", To: to, From: from}}
	}
	entries := []v1alpha1.Entry{
		entry(v1alpha1.CollectionChannels, v1alpha1.Descriptor{ID: "outbox", Version: "1.0.0", Routes: declRefs("bus", "1.0.0")}),
		entry(v1alpha1.CollectionChannels, v1alpha1.Descriptor{ID: "bus", Version: "1.0.0"}),
		entry(v1alpha1.CollectionChannels, v1alpha1.Descriptor{ID: "audit", Version: "1.0.0"}),
		entry(v1alpha1.CollectionEvents, v1alpha1.Descriptor{ID: "Placed", Version: "1.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "A", Version: "1.0.0", Sends: via(declRefs("outbox", "1.0.0"), nil)}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "B", Version: "1.0.0", Receives: via(nil, declRefs("bus", "1.0.0"))}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "C", Version: "1.0.0", Receives: via(nil, declRefs("audit", "1.0.0"))}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "D", Version: "1.0.0", Receives: via(nil, nil)}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "E", Version: "1.0.0", Receives: via(nil, declRefs("ghost", "1.0.0"))}),
	}
	byID := cmpopts.SortSlices(func(a, b edgeSummary) bool { return a.ID < b.ID })

	t.Run("routed", func(t *testing.T) {
		g, ok := memoryBuilder(t, entries...).Build(RoleMessage, "Placed", "1.0.0", Options{RenderChannels: true})
		if !ok {
			t.Fatalf("expected message graph")
		}
		want := []edgeSummary{
			{"A-1.0.0-Placed-1.0.0", "A-1.0.0", "Placed-1.0.0", "publishes event"},
			{"Placed-1.0.0-outbox-1.0.0", "Placed-1.0.0", "outbox-1.0.0", "routes to"},
			{"outbox-1.0.0-bus-1.0.0", "outbox-1.0.0", "bus-1.0.0", "routes to"},
			{"bus-1.0.0-B-1.0.0", "bus-1.0.0", "B-1.0.0", "subscribed by"},
			{"Placed-1.0.0-audit-1.0.0", "Placed-1.0.0", "audit-1.0.0", "routes to"},
			{"audit-1.0.0-C-1.0.0", "audit-1.0.0", "C-1.0.0", "subscribed by"},
			{"Placed-1.0.0-D-1.0.0", "Placed-1.0.0", "D-1.0.0", "subscribed by"},
			{"Placed-1.0.0-E-1.0.0", "Placed-1.0.0", "E-1.0.0", "subscribed by"},
		}
		if diff := cmp.Diff(want, edges(g), byID); diff != "" {
			t.Fatalf("edges mismatch (-want +got):\n%s", diff)
		}
		bus := mustNode(t, g, "bus-1.0.0")
		if bus.Type != TypeChannel || bus.Data.Channel.ChannelMode != ChannelSingle {
			t.Fatalf("unexpected channel node: %+v", bus)
		}
		if _, ok := g.Node("ghost-1.0.0"); ok {
			t.Fatalf("unresolved channel must not be rendered")
		}
	})

	t.Run("off", func(t *testing.T) {
		g, _ := memoryBuilder(t, entries...).Build(RoleMessage, "Placed", "1.0.0", Options{})
		for _, n := range g.Nodes {
			if n.Type == TypeChannel {
				t.Fatalf("unexpected channel node %q", n.ID)
			}
		}
		if len(g.Edges) != 5 {
			t.Fatalf("expected one direct edge per participant, got %v", edges(g))
		}
	})
}

func TestBuild_DomainMergesSubdomainServices(t *testing.T) {
	b := newBuilder(t, store.Typed(store.NewFSStore(sampleCatalog)))

	g, ok := b.Build(RoleDomain, "Shipping", "", Options{})
	if !ok {
		t.Fatalf("expected domain graph")
	}

	seen := make(map[string]bool)
	for _, id := range nodeIDs(g) {
		if seen[id] {
			t.Fatalf("duplicate node id %q", id)
		}
		seen[id] = true
	}
	for _, id := range []string{
		"LocationService-1.0.0", "OrderService-1.0.0", "PaymentService-1.0.0",
		"OrderPlaced-0.0.1", "PaymentProcessed-0.0.1", "PlaceOrder-1.7.7", "GetOrder-1",
		"OrderAnalytics-1.0.0",
	} {
		if !seen[id] {
			t.Fatalf("missing node %q in %v", id, nodeIDs(g))
		}
	}
	if seen["PaymentProcessed-0.0.2"] {
		t.Fatalf("hidden version must not be rendered")
	}

	shared := mustNode(t, g, "OrderPlaced-0.0.1")
	if !shared.Data.ShowSource || !shared.Data.ShowTarget {
		t.Fatalf("shared message should show both handles: %+v", shared.Data)
	}
	if diff := cmp.Diff([]string{"OrderService"}, refIDs(shared.Data.Message.ProducedBy)); diff != "" {
		t.Fatalf("producedBy mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"LocationService", "PaymentService", "OrderAnalytics"}, refIDs(shared.Data.Message.ConsumedBy)); diff != "" {
		t.Fatalf("consumedBy mismatch (-want +got):\n%s", diff)
	}

	if grp := mustNode(t, g, "OrderService-1.0.0").Data.Group; grp == nil || grp.ID != "Checkout" {
		t.Fatalf("sub-domain service should be grouped by its domain, got %+v", grp)
	}
	if grp := mustNode(t, g, "LocationService-1.0.0").Data.Group; grp == nil || grp.ID != "Shipping" {
		t.Fatalf("own service should be grouped by the domain, got %+v", grp)
	}
	if _, ok := g.Edge("OrderPlaced-0.0.1-OrderAnalytics-1.0.0"); !ok {
		t.Fatalf("expected data product consumer edge")
	}
}

func refIDs(rs []catalog.Ref) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestBuild_DataProduct(t *testing.T) {
	b := newBuilder(t, store.Typed(store.NewFSStore(sampleCatalog)))

	g, ok := b.Build(RoleDataProduct, "OrderAnalytics", "latest", Options{})
	if !ok {
		t.Fatalf("expected data product graph")
	}
	in, ok := g.Edge("OrderPlaced-0.0.1-OrderAnalytics-1.0.0")
	if !ok || in.Label != "input" || in.Type != "animated" || in.MarkerEnd.Color != "#666" {
		t.Fatalf("unexpected input edge: %+v", in)
	}
	if out, ok := g.Edge("OrderAnalytics-1.0.0-OrdersReport-1.0.0"); !ok || out.Label != "output" {
		t.Fatalf("unexpected output edge: %+v", out)
	}
	if e, ok := g.Edge("OrderService-1.0.0-OrderPlaced-0.0.1"); !ok || e.Label != "publishes event" {
		t.Fatalf("expected producer of input, got %+v", e)
	}
	dp := mustNode(t, g, "OrderAnalytics-1.0.0")
	if dp.Type != TypeDataProduct || !dp.Data.ShowSource || !dp.Data.ShowTarget {
		t.Fatalf("unexpected data product node: %+v", dp)
	}
}

func TestBuild_FlowSteps(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionFlows, v1alpha1.Descriptor{ID: "Checkout", Version: "1.0.0", Steps: []v1alpha1.FlowStep{
			{ID: "1", Title: "Customer places order", Message: &v1alpha1.Reference{ID: "PlaceOrder"}, NextSteps: []v1alpha1.StepLink{{ID: "2", Label: "valid"}, {ID: "3", Label: "invalid"}}},
			{ID: "2", Service: &v1alpha1.Reference{ID: "OrderService"}, NextStep: &v1alpha1.StepLink{ID: "4"}},
			{ID: "3", Title: "Reject"},
			{ID: "4", Flow: &v1alpha1.Reference{ID: "Payment"}},
			{ID: "5", Service: &v1alpha1.Reference{ID: "Ghost"}},
		}}),
		entry(v1alpha1.CollectionFlows, v1alpha1.Descriptor{ID: "Payment", Version: "1.0.0"}),
		entry(v1alpha1.CollectionCommands, v1alpha1.Descriptor{ID: "PlaceOrder", Version: "1.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "OrderService", Version: "1.0.0"}),
	)

	g, ok := b.Build(RoleFlow, "Checkout", "1.0.0", Options{})
	if !ok {
		t.Fatalf("expected flow graph")
	}

	types := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		types[n.ID] = n.Type
	}
	wantTypes := map[string]string{
		"step-1": "commands",
		"step-2": TypeService,
		"step-3": TypeStep,
		"step-4": TypeFlow,
		"step-5": TypeStep,
	}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Fatalf("node types mismatch (-want +got):\n%s", diff)
	}

	want := []edgeSummary{
		{"step-1-step-2", "step-1", "step-2", "valid"},
		{"step-1-step-3", "step-1", "step-3", "invalid"},
		{"step-2-step-4", "step-2", "step-4", ""},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	first := mustNode(t, g, "step-1")
	if first.Data.Message == nil || first.Data.Message.ID != "PlaceOrder" || first.Data.Step.Title != "Customer places order" {
		t.Fatalf("unexpected step node: %+v", first.Data)
	}
	if sub := mustNode(t, g, "step-4"); sub.Data.Flow == nil || sub.Data.Flow.ID != "Payment" {
		t.Fatalf("expected sub-flow payload, got %+v", sub.Data)
	}
	if e, _ := g.Edge("step-1-step-2"); e.Type != "flow-edge" || !e.Animated {
		t.Fatalf("unexpected flow edge: %+v", e)
	}
}

func TestBuild_ContainerReadersAndWriters(t *testing.T) {
	b := memoryBuilder(t,
		entry(v1alpha1.CollectionContainers, v1alpha1.Descriptor{ID: "orders-db", Version: "1.0.0"}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "W", Version: "1.0.0", WritesTo: declRefs("orders-db", "1.0.0")}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "R", Version: "1.0.0", ReadsFrom: declRefs("orders-db", "latest")}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "X", Version: "1.0.0", WritesTo: declRefs("orders-db", "1.0.0"), ReadsFrom: declRefs("orders-db", "1.0.0")}),
		entry(v1alpha1.CollectionServices, v1alpha1.Descriptor{ID: "Other", Version: "1.0.0"}),
	)

	g, ok := b.Build(RoleContainer, "orders-db", "", Options{})
	if !ok {
		t.Fatalf("expected container graph")
	}
	want := []edgeSummary{
		{"W-1.0.0-orders-db-1.0.0", "W-1.0.0", "orders-db-1.0.0", "writes to"},
		{"R-1.0.0-orders-db-1.0.0", "orders-db-1.0.0", "R-1.0.0", "reads from"},
		{"orders-db-1.0.0-X-1.0.0-both", "X-1.0.0", "orders-db-1.0.0", "reads and writes to"},
	}
	byID := cmpopts.SortSlices(func(a, b edgeSummary) bool { return a.ID < b.ID })
	if diff := cmp.Diff(want, edges(g), byID); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if _, ok := g.Node("Other-1.0.0"); ok {
		t.Fatalf("unrelated service must not be rendered")
	}

	db := mustNode(t, g, "orders-db-1.0.0")
	if db.Type != TypeContainer || db.Data.Container == nil || !db.Data.ShowSource || !db.Data.ShowTarget {
		t.Fatalf("unexpected container node: %+v", db)
	}
	if x := mustNode(t, g, "X-1.0.0"); !x.Data.ShowSource || !x.Data.ShowTarget {
		t.Fatalf("expected both handles on a reading and writing service, got %+v", x.Data)
	}
	if e, _ := g.Edge("R-1.0.0-orders-db-1.0.0"); e.MarkerStart == nil {
		t.Fatalf("expected a start marker on read edges")
	}
}

func TestBuild_UnknownFocus(t *testing.T) {
	b := memoryBuilder(t)
	for _, role := range append(Roles, Role("entity")) {
		g, ok := b.Build(role, "missing", "1.0.0", Options{})
		if ok {
			t.Fatalf("Build(%s) should report a missing focus", role)
		}
		if g.Nodes == nil || g.Edges == nil || len(g.Nodes)+len(g.Edges) != 0 {
			t.Fatalf("expected empty non-nil graph, got %+v", g)
		}
	}
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]Role{
		"service":      RoleService,
		"Domain":       RoleDomain,
		"event":        RoleMessage,
		"query":        RoleMessage,
		"data-product": RoleDataProduct,
		"flow":         RoleFlow,
		"Container":    RoleContainer,
	} {
		got, err := ParseRole(raw)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseRole("entity"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestParseFocus(t *testing.T) {
	got, err := ParseFocus("event:OrderPlaced@0.0.1")
	if err != nil {
		t.Fatalf("ParseFocus error: %v", err)
	}
	if diff := cmp.Diff(Focus{Role: RoleMessage, ID: "OrderPlaced", Version: "0.0.1"}, got); diff != "" {
		t.Fatalf("focus mismatch (-want +got):\n%s", diff)
	}

	got, err = ParseFocus("domain:Shipping")
	if err != nil || got.Version != "" || got.String() != "domain:Shipping" {
		t.Fatalf("unexpected focus %+v, %v", got, err)
	}

	for _, bad := range []string{"Shipping", "domain:", "domain:@1.0.0"} {
		if _, err := ParseFocus(bad); err == nil {
			t.Errorf("expected ParseFocus(%q) to fail", bad)
		}
	}
	if _, err := ParseFocus("entity:Order"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}
