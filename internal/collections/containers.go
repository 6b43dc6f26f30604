package collections

import (
	"context"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetContainers returns visible containers with the services that write to
// and read from them.
func (e *Enricher) GetContainers(ctx context.Context, opts Options) ([]Container, error) {
	res, err := e.containers(ctx, opts)
	return res.Items, err
}

func (e *Enricher) containers(ctx context.Context, opts Options) (Result[Container], error) {
	return enrich(ctx, e, v1alpha1.CollectionContainers, versionsVariant(opts.CurrentOnly), func(ctx context.Context, _ *resolver.Diagnostics) ([]Container, error) {
		snap, err := store.Fetch(ctx, e.repo, catalog.KindContainer, catalog.KindService)
		if err != nil {
			return nil, err
		}

		pool := resolver.Visible(snap.Containers)
		versions := resolver.NewVersionedMap(snap.Containers)

		// Misses are reported by the services enrichment.
		writers := make(map[string][]catalog.Service)
		readers := make(map[string][]catalog.Service)
		for _, s := range resolver.Visible(snap.Services) {
			for _, c := range resolver.HydrateAll(pool, s.WritesTo, nil) {
				writers[c.NodeID()] = append(writers[c.NodeID()], s)
			}
			for _, c := range resolver.HydrateAll(pool, s.ReadsFrom, nil) {
				readers[c.NodeID()] = append(readers[c.NodeID()], s)
			}
		}

		out := make([]Container, 0, len(snap.Containers))
		for _, c := range targets(snap.Containers, opts.CurrentOnly) {
			out = append(out, Container{
				Container: c,
				History:   history(versions, c.Resource),
				Resolved: ContainerRelations{
					WrittenBy: writers[c.NodeID()],
					ReadBy:    readers[c.NodeID()],
				},
			})
		}
		sortByName(out)
		return out, nil
	})
}
