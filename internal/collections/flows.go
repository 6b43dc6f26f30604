package collections

import (
	"context"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetFlows returns visible flows with each step's message and service
// resolved to its single best match.
func (e *Enricher) GetFlows(ctx context.Context, opts Options) ([]Flow, error) {
	res, err := e.flows(ctx, opts)
	return res.Items, err
}

func (e *Enricher) flows(ctx context.Context, opts Options) (Result[Flow], error) {
	return enrich(ctx, e, v1alpha1.CollectionFlows, versionsVariant(opts.CurrentOnly), func(ctx context.Context, diag *resolver.Diagnostics) ([]Flow, error) {
		snap, err := store.Fetch(ctx, e.repo, catalog.KindFlow, catalog.KindEvent, catalog.KindCommand, catalog.KindQuery, catalog.KindService)
		if err != nil {
			return nil, err
		}

		messages := resolver.NewVersionedMap(snap.Messages())
		services := resolver.NewVersionedMap(snap.Services)
		versions := resolver.NewVersionedMap(snap.Flows)

		out := make([]Flow, 0, len(snap.Flows))
		for _, f := range targets(snap.Flows, opts.CurrentOnly) {
			enriched := Flow{Flow: f, History: history(versions, f.Resource)}
			for _, step := range f.Steps {
				s := FlowStep{FlowStep: step}
				if step.Message != nil {
					if m, ok := messages.Find(*step.Message); ok {
						s.ResolvedMessage = &m
					} else {
						diag.Add(f.Ref(), "steps.message", *step.Message, "no matching resource found")
					}
				}
				if step.Service != nil {
					if svc, ok := services.Find(*step.Service); ok {
						s.ResolvedService = &svc
					} else {
						diag.Add(f.Ref(), "steps.service", *step.Service, "no matching resource found")
					}
				}
				if step.Flow != nil {
					if sub, ok := versions.Find(*step.Flow); ok {
						s.ResolvedFlow = &sub
					} else {
						diag.Add(f.Ref(), "steps.flow", *step.Flow, "no matching resource found")
					}
				}
				enriched.ResolvedSteps = append(enriched.ResolvedSteps, s)
			}
			out = append(out, enriched)
		}
		sortByName(out)
		return out, nil
	})
}

// GetFlowsNotInAnyResource returns current flows that no current domain or
// service references.
func (e *Enricher) GetFlowsNotInAnyResource(ctx context.Context) ([]Flow, error) {
	flows, err := e.GetFlows(ctx, Options{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	domains, err := e.GetDomains(ctx, DomainOptions{CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	services, err := e.GetServices(ctx, Options{CurrentOnly: true})
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool)
	for _, d := range domains {
		for _, ptr := range d.Flows {
			referenced[ptr.ID] = true
		}
	}
	for _, s := range services {
		for _, ptr := range s.Flows {
			referenced[ptr.ID] = true
		}
	}

	var out []Flow
	for _, f := range flows {
		if !referenced[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}
