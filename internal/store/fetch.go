package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

// Snapshot is the set of resources fetched for one resolution pass.
type Snapshot struct {
	Services     []catalog.Service
	Events       []catalog.Message
	Commands     []catalog.Message
	Queries      []catalog.Message
	Domains      []catalog.Domain
	Flows        []catalog.Flow
	Channels     []catalog.Channel
	DataProducts []catalog.DataProduct
	Entities     []catalog.Entity
	Containers   []catalog.Container
}

// Messages returns events, commands and queries in that order.
func (s *Snapshot) Messages() []catalog.Message {
	out := make([]catalog.Message, 0, len(s.Events)+len(s.Commands)+len(s.Queries))
	out = append(out, s.Events...)
	out = append(out, s.Commands...)
	out = append(out, s.Queries...)
	return out
}

// Fetch reads the requested kinds concurrently. The first error cancels the
// remaining reads and is returned. With no kinds, every kind is fetched.
func Fetch(ctx context.Context, repo Repository, kinds ...catalog.Kind) (*Snapshot, error) {
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	for _, k := range dedupeKinds(kinds) {
		switch k {
		case catalog.KindService:
			g.Go(func() (err error) { snap.Services, err = repo.Services(ctx); return })
		case catalog.KindEvent:
			g.Go(func() (err error) { snap.Events, err = repo.Events(ctx); return })
		case catalog.KindCommand:
			g.Go(func() (err error) { snap.Commands, err = repo.Commands(ctx); return })
		case catalog.KindQuery:
			g.Go(func() (err error) { snap.Queries, err = repo.Queries(ctx); return })
		case catalog.KindDomain:
			g.Go(func() (err error) { snap.Domains, err = repo.Domains(ctx); return })
		case catalog.KindFlow:
			g.Go(func() (err error) { snap.Flows, err = repo.Flows(ctx); return })
		case catalog.KindChannel:
			g.Go(func() (err error) { snap.Channels, err = repo.Channels(ctx); return })
		case catalog.KindDataProduct:
			g.Go(func() (err error) { snap.DataProducts, err = repo.DataProducts(ctx); return })
		case catalog.KindEntity:
			g.Go(func() (err error) { snap.Entities, err = repo.Entities(ctx); return })
		case catalog.KindContainer:
			g.Go(func() (err error) { snap.Containers, err = repo.Containers(ctx); return })
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// AllKinds lists every kind a Repository serves.
var AllKinds = []catalog.Kind{
	catalog.KindService,
	catalog.KindEvent,
	catalog.KindCommand,
	catalog.KindQuery,
	catalog.KindDomain,
	catalog.KindFlow,
	catalog.KindChannel,
	catalog.KindDataProduct,
	catalog.KindEntity,
	catalog.KindContainer,
}

// MessageKinds are the kinds whose entries are messages.
var MessageKinds = []catalog.Kind{catalog.KindEvent, catalog.KindCommand, catalog.KindQuery}

func dedupeKinds(kinds []catalog.Kind) []catalog.Kind {
	seen := make(map[catalog.Kind]bool, len(kinds))
	out := make([]catalog.Kind, 0, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
