package collections

import (
	"context"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetChannels returns visible channels with the messages declared on each
// channel version.
func (e *Enricher) GetChannels(ctx context.Context, opts Options) ([]Channel, error) {
	res, err := e.channels(ctx, opts)
	return res.Items, err
}

type channelClaim struct {
	message catalog.Message
	ptr     catalog.Pointer
}

func (e *Enricher) channels(ctx context.Context, opts Options) (Result[Channel], error) {
	return enrich(ctx, e, v1alpha1.CollectionChannels, versionsVariant(opts.CurrentOnly), func(ctx context.Context, _ *resolver.Diagnostics) ([]Channel, error) {
		snap, err := store.Fetch(ctx, e.repo, catalog.KindChannel, catalog.KindEvent, catalog.KindCommand, catalog.KindQuery)
		if err != nil {
			return nil, err
		}

		claims := make(map[string][]channelClaim)
		for _, m := range resolver.Visible(snap.Messages()) {
			for _, ptr := range m.Channels {
				claims[ptr.ID] = append(claims[ptr.ID], channelClaim{message: m, ptr: ptr})
			}
		}
		versions := resolver.NewVersionedMap(snap.Channels)

		out := make([]Channel, 0, len(snap.Channels))
		for _, ch := range targets(snap.Channels, opts.CurrentOnly) {
			h := history(versions, ch.Resource)
			var msgs []catalog.Message
			for _, c := range claims[ch.ID] {
				if resolver.Matches(ch.Version, c.ptr, h.LatestVersion) {
					msgs = append(msgs, c.message)
				}
			}
			out = append(out, Channel{Channel: ch, History: h, Messages: msgs})
		}
		sortByName(out)
		return out, nil
	})
}

func channelKey(ch catalog.Channel) string {
	return ch.ID + ":" + ch.Version
}

// sameChannel is the identity rule for route traversal: id and version.
func sameChannel(a, b catalog.Channel) bool {
	return a.ID == b.ID && a.Version == b.Version
}

// ChannelsConnected reports whether target is reachable from source by
// following routes. Each route resolves to its single best match in
// channels. Cycles are tolerated.
func ChannelsConnected(source, target catalog.Channel, channels []catalog.Channel) bool {
	return channelsConnected(source, target, channels, make(map[string]bool))
}

func channelsConnected(source, target catalog.Channel, channels []catalog.Channel, visited map[string]bool) bool {
	if sameChannel(source, target) {
		return true
	}
	key := channelKey(source)
	if visited[key] {
		return false
	}
	visited[key] = true

	for _, route := range source.Routes {
		next, ok := resolver.FindOne(channels, route)
		if !ok {
			continue
		}
		if channelsConnected(next, target, channels, visited) {
			return true
		}
	}
	return false
}

// ChannelChain returns the channels on the route from source to target,
// both included, or nil if target is unreachable.
func ChannelChain(source, target catalog.Channel, channels []catalog.Channel) []catalog.Channel {
	return channelChain(source, target, channels, make(map[string]bool))
}

func channelChain(source, target catalog.Channel, channels []catalog.Channel, visited map[string]bool) []catalog.Channel {
	if sameChannel(source, target) {
		return []catalog.Channel{source}
	}
	key := channelKey(source)
	if visited[key] || !ChannelsConnected(source, target, channels) {
		return nil
	}
	visited[key] = true

	for _, route := range source.Routes {
		next, ok := resolver.FindOne(channels, route)
		if !ok {
			continue
		}
		if rest := channelChain(next, target, channels, visited); rest != nil {
			return append([]catalog.Channel{source}, rest...)
		}
	}
	return nil
}
