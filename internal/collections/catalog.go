package collections

import (
	"context"

	"golang.org/x/sync/errgroup"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
)

// Catalog holds every enriched collection of one resolution pass, across all
// versions. Graph building reads from it.
type Catalog struct {
	Services     []Service
	Messages     []Message
	Domains      []Domain
	DataProducts []DataProduct
	Channels     []Channel
	Flows        []Flow
	Containers   []Container

	Diagnostics resolver.Diagnostics
}

// Catalog enriches every collection concurrently. Domains have their
// services enriched so domain graphs can be built without further lookups.
func (e *Enricher) Catalog(ctx context.Context) (*Catalog, error) {
	var (
		services     Result[Service]
		domains      Result[Domain]
		dataProducts Result[DataProduct]
		channels     Result[Channel]
		flows        Result[Flow]
		containers   Result[Container]
		messages     [3]Result[Message]
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { services, err = e.services(ctx, Options{}); return })
	g.Go(func() (err error) { domains, err = e.domains(ctx, DomainOptions{EnrichServices: true}); return })
	g.Go(func() (err error) { dataProducts, err = e.dataProducts(ctx, Options{}); return })
	g.Go(func() (err error) { channels, err = e.channels(ctx, Options{}); return })
	g.Go(func() (err error) { flows, err = e.flows(ctx, Options{}); return })
	g.Go(func() (err error) { containers, err = e.containers(ctx, Options{}); return })
	for i, kind := range []catalog.Kind{catalog.KindEvent, catalog.KindCommand, catalog.KindQuery} {
		g.Go(func() (err error) { messages[i], err = e.messages(ctx, kind, MessageOptions{}); return })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Catalog{
		Services:     services.Items,
		Domains:      domains.Items,
		DataProducts: dataProducts.Items,
		Channels:     channels.Items,
		Flows:        flows.Items,
		Containers:   containers.Items,
	}
	for _, m := range messages {
		c.Messages = append(c.Messages, m.Items...)
	}
	sortByName(c.Messages)

	c.Diagnostics.Merge(services.Diagnostics)
	c.Diagnostics.Merge(domains.Diagnostics)
	c.Diagnostics.Merge(dataProducts.Diagnostics)
	c.Diagnostics.Merge(channels.Diagnostics)
	c.Diagnostics.Merge(flows.Diagnostics)
	for _, m := range messages {
		c.Diagnostics.Merge(m.Diagnostics)
	}
	return c, nil
}

// Find returns the entry of items matching id at version. An empty version or
// "latest" selects the newest entry; a range selects the highest match.
func Find[T catalog.Versioned](items []T, id, version string) (T, bool) {
	return resolver.FindOne(items, catalog.ParsePointer(v1alpha1.Reference{ID: id, Version: version}))
}

func (c *Catalog) Service(id, version string) (Service, bool) {
	return Find(c.Services, id, version)
}

func (c *Catalog) Message(id, version string) (Message, bool) {
	return Find(c.Messages, id, version)
}

func (c *Catalog) Domain(id, version string) (Domain, bool) {
	return Find(c.Domains, id, version)
}

func (c *Catalog) DataProduct(id, version string) (DataProduct, bool) {
	return Find(c.DataProducts, id, version)
}

func (c *Catalog) Channel(id, version string) (Channel, bool) {
	return Find(c.Channels, id, version)
}

func (c *Catalog) Flow(id, version string) (Flow, bool) {
	return Find(c.Flows, id, version)
}

func (c *Catalog) Container(id, version string) (Container, bool) {
	return Find(c.Containers, id, version)
}

// RawChannels returns the unenriched channels, for route resolution.
func (c *Catalog) RawChannels() []catalog.Channel {
	out := make([]catalog.Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		out = append(out, ch.Channel)
	}
	return out
}

// Diagnose runs a full enrichment pass and returns every dropped reference.
func (e *Enricher) Diagnose(ctx context.Context) (resolver.Diagnostics, error) {
	c, err := e.Catalog(ctx)
	if err != nil {
		return resolver.Diagnostics{}, err
	}
	return c.Diagnostics, nil
}
