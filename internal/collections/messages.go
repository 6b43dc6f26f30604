package collections

import (
	"context"
	"fmt"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

func (e *Enricher) GetEvents(ctx context.Context, opts MessageOptions) ([]Message, error) {
	res, err := e.messages(ctx, catalog.KindEvent, opts)
	return res.Items, err
}

func (e *Enricher) GetCommands(ctx context.Context, opts MessageOptions) ([]Message, error) {
	res, err := e.messages(ctx, catalog.KindCommand, opts)
	return res.Items, err
}

func (e *Enricher) GetQueries(ctx context.Context, opts MessageOptions) ([]Message, error) {
	res, err := e.messages(ctx, catalog.KindQuery, opts)
	return res.Items, err
}

// GetMessages returns events, commands and queries as one collection.
func (e *Enricher) GetMessages(ctx context.Context, opts MessageOptions) ([]Message, error) {
	var out []Message
	for _, kind := range store.MessageKinds {
		res, err := e.messages(ctx, kind, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
	}
	sortByName(out)
	return out, nil
}

func messageVariant(opts MessageOptions) string {
	hydration := "hydrated"
	if opts.Minimal {
		hydration = "minimal"
	}
	return versionsVariant(opts.CurrentOnly) + "-" + hydration
}

func (e *Enricher) messages(ctx context.Context, kind catalog.Kind, opts MessageOptions) (Result[Message], error) {
	if !kind.IsMessage() {
		return Result[Message]{}, fmt.Errorf("%w: %q is not a message kind", store.ErrUnknownCollection, kind)
	}
	return enrich(ctx, e, kind.Collection(), messageVariant(opts), func(ctx context.Context, diag *resolver.Diagnostics) ([]Message, error) {
		snap, err := store.Fetch(ctx, e.repo, kind, catalog.KindService, catalog.KindDataProduct, catalog.KindChannel)
		if err != nil {
			return nil, err
		}

		var pool []catalog.Message
		switch kind {
		case catalog.KindEvent:
			pool = snap.Events
		case catalog.KindCommand:
			pool = snap.Commands
		case catalog.KindQuery:
			pool = snap.Queries
		}

		ix := resolver.BuildIndex(snap.Services, snap.DataProducts)
		channels := resolver.Visible(snap.Channels)
		versions := resolver.NewVersionedMap(pool)

		out := make([]Message, 0, len(pool))
		for _, m := range targets(pool, opts.CurrentOnly) {
			h := history(versions, m.Resource)
			participants := ix.Lookup(m.ID, m.Version, h.LatestVersion, !opts.Minimal)
			out = append(out, Message{
				Message:   m,
				History:   h,
				Producers: participants.Producers,
				Consumers: participants.Consumers,
				Resolved: MessageRelations{
					Channels: resolver.HydrateAll(channels, m.Channels, diag.Miss(m.Ref(), "channels")),
				},
			})
		}
		sortByName(out)
		return out, nil
	})
}
