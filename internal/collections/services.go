package collections

import (
	"context"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetServices returns visible services with their messages, entities,
// containers and flows resolved.
func (e *Enricher) GetServices(ctx context.Context, opts Options) ([]Service, error) {
	res, err := e.services(ctx, opts)
	return res.Items, err
}

func (e *Enricher) services(ctx context.Context, opts Options) (Result[Service], error) {
	return enrich(ctx, e, v1alpha1.CollectionServices, versionsVariant(opts.CurrentOnly), func(ctx context.Context, diag *resolver.Diagnostics) ([]Service, error) {
		snap, err := store.Fetch(ctx, e.repo,
			catalog.KindService,
			catalog.KindEvent, catalog.KindCommand, catalog.KindQuery,
			catalog.KindEntity, catalog.KindContainer, catalog.KindFlow,
		)
		if err != nil {
			return nil, err
		}

		pools := servicePools{
			messages:   resolver.Visible(snap.Messages()),
			entities:   resolver.Visible(snap.Entities),
			containers: resolver.Visible(snap.Containers),
			flows:      resolver.Visible(snap.Flows),
		}
		versions := resolver.NewVersionedMap(snap.Services)

		out := make([]Service, 0, len(snap.Services))
		for _, s := range targets(snap.Services, opts.CurrentOnly) {
			out = append(out, Service{
				Service:  s,
				History:  history(versions, s.Resource),
				Resolved: pools.resolve(s, diag),
			})
		}
		sortByName(out)
		return out, nil
	})
}

type servicePools struct {
	messages   []catalog.Message
	entities   []catalog.Entity
	containers []catalog.Container
	flows      []catalog.Flow
}

func (p servicePools) resolve(s catalog.Service, diag *resolver.Diagnostics) ServiceRelations {
	from := s.Ref()
	return ServiceRelations{
		Sends:     resolver.HydrateAll(p.messages, s.Sends, diag.Miss(from, "sends")),
		Receives:  resolver.HydrateAll(p.messages, s.Receives, diag.Miss(from, "receives")),
		Entities:  resolver.HydrateAll(p.entities, s.Entities, diag.Miss(from, "entities")),
		WritesTo:  resolver.HydrateAll(p.containers, s.WritesTo, diag.Miss(from, "writesTo")),
		ReadsFrom: resolver.HydrateAll(p.containers, s.ReadsFrom, diag.Miss(from, "readsFrom")),
		Flows:     resolver.HydrateAll(p.flows, s.Flows, diag.Miss(from, "flows")),
	}
}

// GetServicesNotInAnyDomain returns current services that no current domain
// lists, directly or through a sub-domain.
func (e *Enricher) GetServicesNotInAnyDomain(ctx context.Context) ([]Service, error) {
	services, err := e.GetServices(ctx, Options{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	domains, err := e.GetDomains(ctx, DomainOptions{CurrentOnly: true})
	if err != nil {
		return nil, err
	}

	var out []Service
	for _, s := range services {
		if len(domainsListing(domains, s.ID)) == 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetProducersAndConsumersForChannel returns current services sending or
// receiving any message carried by ch.
func (e *Enricher) GetProducersAndConsumersForChannel(ctx context.Context, ch Channel) (producers, consumers []Service, err error) {
	services, err := e.GetServices(ctx, Options{CurrentOnly: true})
	if err != nil {
		return nil, nil, err
	}
	carries := func(msgs []catalog.Message) bool {
		for _, m := range msgs {
			if containsID(ch.Messages, m.ID) {
				return true
			}
		}
		return false
	}
	for _, s := range services {
		if carries(s.Resolved.Sends) {
			producers = append(producers, s)
		}
		if carries(s.Resolved.Receives) {
			consumers = append(consumers, s)
		}
	}
	return producers, consumers, nil
}
