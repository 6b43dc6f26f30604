package collections

import (
	"context"
	"strconv"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetDomains returns visible domains with services, sub-domains, entities
// and flows resolved.
func (e *Enricher) GetDomains(ctx context.Context, opts DomainOptions) ([]Domain, error) {
	res, err := e.domains(ctx, opts)
	return res.Items, err
}

func domainVariant(opts DomainOptions) string {
	enrichment := "simple"
	if opts.EnrichServices {
		enrichment = "enriched"
	}
	return versionsVariant(opts.CurrentOnly) + "-" + strconv.FormatBool(!opts.ExcludeSubdomainServices) + "-" + enrichment
}

func (e *Enricher) domains(ctx context.Context, opts DomainOptions) (Result[Domain], error) {
	return enrich(ctx, e, v1alpha1.CollectionDomains, domainVariant(opts), func(ctx context.Context, diag *resolver.Diagnostics) ([]Domain, error) {
		kinds := []catalog.Kind{catalog.KindDomain, catalog.KindService, catalog.KindEntity, catalog.KindFlow}
		if opts.EnrichServices {
			kinds = append(kinds, catalog.KindEvent, catalog.KindCommand, catalog.KindQuery, catalog.KindContainer)
		}
		snap, err := store.Fetch(ctx, e.repo, kinds...)
		if err != nil {
			return nil, err
		}

		r := domainResolver{
			opts:     opts,
			domains:  resolver.Visible(snap.Domains),
			services: resolver.Visible(snap.Services),
			entities: resolver.Visible(snap.Entities),
			flows:    resolver.Visible(snap.Flows),
			pools: servicePools{
				messages:   resolver.Visible(snap.Messages()),
				containers: resolver.Visible(snap.Containers),
			},
			diag: diag,
		}
		versions := resolver.NewVersionedMap(snap.Domains)

		out := make([]Domain, 0, len(snap.Domains))
		for _, d := range targets(snap.Domains, opts.CurrentOnly) {
			enriched := Domain{Domain: d, History: history(versions, d.Resource)}

			for _, ptr := range d.Domains {
				sub, ok := resolver.FindOne(r.domains, ptr)
				if !ok {
					diag.Add(d.Ref(), "domains", ptr, "no matching resource found")
					continue
				}
				if sub.ID == d.ID {
					continue
				}
				enriched.Resolved.Domains = append(enriched.Resolved.Domains, Domain{
					Domain:   sub,
					Resolved: DomainRelations{Services: r.resolveServices(sub)},
				})
			}

			enriched.Resolved.Services = r.resolveServices(d)
			if !opts.ExcludeSubdomainServices {
				for _, sub := range enriched.Resolved.Domains {
					enriched.Resolved.Services = append(enriched.Resolved.Services, sub.Resolved.Services...)
				}
			}
			enriched.Resolved.Entities = resolver.HydrateAll(r.entities, d.Entities, diag.Miss(d.Ref(), "entities"))
			enriched.Resolved.Flows = resolver.HydrateAll(r.flows, d.Flows, diag.Miss(d.Ref(), "flows"))

			out = append(out, enriched)
		}
		sortByName(out)
		return out, nil
	})
}

type domainResolver struct {
	opts     DomainOptions
	domains  []catalog.Domain
	services []catalog.Service
	entities []catalog.Entity
	flows    []catalog.Flow
	pools    servicePools
	diag     *resolver.Diagnostics
}

// resolveServices resolves each service pointer of d to its single best match.
func (r domainResolver) resolveServices(d catalog.Domain) []Service {
	var out []Service
	for _, ptr := range d.Services {
		s, ok := resolver.FindOne(r.services, ptr)
		if !ok {
			r.diag.Add(d.Ref(), "services", ptr, "no matching resource found")
			continue
		}
		svc := Service{Service: s}
		if r.opts.EnrichServices {
			from := s.Ref()
			svc.Resolved = ServiceRelations{
				Sends:     resolver.HydrateAll(r.pools.messages, s.Sends, r.diag.Miss(from, "sends")),
				Receives:  resolver.HydrateAll(r.pools.messages, s.Receives, r.diag.Miss(from, "receives")),
				WritesTo:  resolver.HydrateAll(r.pools.containers, s.WritesTo, r.diag.Miss(from, "writesTo")),
				ReadsFrom: resolver.HydrateAll(r.pools.containers, s.ReadsFrom, r.diag.Miss(from, "readsFrom")),
			}
		}
		out = append(out, svc)
	}
	return out
}

func domainsListing(domains []Domain, serviceID string) []Domain {
	var out []Domain
	for _, d := range domains {
		if containsID(d.Resolved.Services, serviceID) {
			out = append(out, d)
		}
	}
	return out
}

// GetDomainsForService returns current domains listing the service id.
func (e *Enricher) GetDomainsForService(ctx context.Context, serviceID string) ([]Domain, error) {
	domains, err := e.GetDomains(ctx, DomainOptions{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	return domainsListing(domains, serviceID), nil
}

// GetParentDomains returns current domains that list domainID as a sub-domain.
func (e *Enricher) GetParentDomains(ctx context.Context, domainID string) ([]Domain, error) {
	domains, err := e.GetDomains(ctx, DomainOptions{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	var out []Domain
	for _, d := range domains {
		if containsID(d.Resolved.Domains, domainID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetRootDomains returns current domains that are nobody's sub-domain.
func (e *Enricher) GetRootDomains(ctx context.Context) ([]Domain, error) {
	domains, err := e.GetDomains(ctx, DomainOptions{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	subs := make(map[string]bool)
	for _, d := range domains {
		for _, sub := range d.Resolved.Domains {
			subs[sub.ID] = true
		}
	}
	var out []Domain
	for _, d := range domains {
		if !subs[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetMessagesForDomain resolves what the services of d send and receive.
func (e *Enricher) GetMessagesForDomain(ctx context.Context, d Domain) (sends, receives []catalog.Message, err error) {
	snap, err := store.Fetch(ctx, e.repo, store.MessageKinds...)
	if err != nil {
		return nil, nil, err
	}
	messages := resolver.NewVersionedMap(snap.Messages())
	for _, s := range d.Resolved.Services {
		for _, ptr := range s.Sends {
			if m, ok := messages.Find(ptr); ok {
				sends = append(sends, m)
			}
		}
		for _, ptr := range s.Receives {
			if m, ok := messages.Find(ptr); ok {
				receives = append(receives, m)
			}
		}
	}
	return sends, receives, nil
}
