// Package store provides typed read access to catalog resources.
package store

import (
	"context"
	"errors"
	"fmt"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

var (
	// ErrUnknownCollection is returned for collections the engine does not model.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Source returns the raw entries of one collection.
type Source interface {
	Entries(ctx context.Context, collection v1alpha1.Collection) ([]v1alpha1.Entry, error)
}

// Repository is the typed view of a Source, one method per resource kind.
type Repository interface {
	Services(ctx context.Context) ([]catalog.Service, error)
	Events(ctx context.Context) ([]catalog.Message, error)
	Commands(ctx context.Context) ([]catalog.Message, error)
	Queries(ctx context.Context) ([]catalog.Message, error)
	Domains(ctx context.Context) ([]catalog.Domain, error)
	Flows(ctx context.Context) ([]catalog.Flow, error)
	Channels(ctx context.Context) ([]catalog.Channel, error)
	DataProducts(ctx context.Context) ([]catalog.DataProduct, error)
	Entities(ctx context.Context) ([]catalog.Entity, error)
	Containers(ctx context.Context) ([]catalog.Container, error)
}

// Typed wraps src in a Repository.
func Typed(src Source) Repository {
	return &typedRepository{src: src}
}

type typedRepository struct {
	src Source
}

func load[T any](ctx context.Context, src Source, c v1alpha1.Collection, fn func(v1alpha1.Entry) T) ([]T, error) {
	entries, err := src.Entries(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	return catalog.ConvertAll(entries, fn), nil
}

func messageOf(kind catalog.Kind) func(v1alpha1.Entry) catalog.Message {
	return func(e v1alpha1.Entry) catalog.Message { return catalog.MessageFromEntry(kind, e) }
}

func (r *typedRepository) Services(ctx context.Context) ([]catalog.Service, error) {
	return load(ctx, r.src, v1alpha1.CollectionServices, catalog.ServiceFromEntry)
}

func (r *typedRepository) Events(ctx context.Context) ([]catalog.Message, error) {
	return load(ctx, r.src, v1alpha1.CollectionEvents, messageOf(catalog.KindEvent))
}

func (r *typedRepository) Commands(ctx context.Context) ([]catalog.Message, error) {
	return load(ctx, r.src, v1alpha1.CollectionCommands, messageOf(catalog.KindCommand))
}

func (r *typedRepository) Queries(ctx context.Context) ([]catalog.Message, error) {
	return load(ctx, r.src, v1alpha1.CollectionQueries, messageOf(catalog.KindQuery))
}

func (r *typedRepository) Domains(ctx context.Context) ([]catalog.Domain, error) {
	return load(ctx, r.src, v1alpha1.CollectionDomains, catalog.DomainFromEntry)
}

func (r *typedRepository) Flows(ctx context.Context) ([]catalog.Flow, error) {
	return load(ctx, r.src, v1alpha1.CollectionFlows, catalog.FlowFromEntry)
}

func (r *typedRepository) Channels(ctx context.Context) ([]catalog.Channel, error) {
	return load(ctx, r.src, v1alpha1.CollectionChannels, catalog.ChannelFromEntry)
}

func (r *typedRepository) DataProducts(ctx context.Context) ([]catalog.DataProduct, error) {
	return load(ctx, r.src, v1alpha1.CollectionDataProducts, catalog.DataProductFromEntry)
}

func (r *typedRepository) Entities(ctx context.Context) ([]catalog.Entity, error) {
	return load(ctx, r.src, v1alpha1.CollectionEntities, catalog.EntityFromEntry)
}

func (r *typedRepository) Containers(ctx context.Context) ([]catalog.Container, error) {
	return load(ctx, r.src, v1alpha1.CollectionContainers, catalog.ContainerFromEntry)
}
