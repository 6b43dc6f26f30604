package collections

import (
	"context"
	"sort"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/cache"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/metrics"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/semver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// Enricher builds enriched collections from a repository. Results are
// memoized in the injected cache, keyed by collection and calling flags.
type Enricher struct {
	repo  store.Repository
	cache *cache.Cache
}

// NewEnricher returns an Enricher. A nil cache disables memoization.
func NewEnricher(repo store.Repository, c *cache.Cache) *Enricher {
	return &Enricher{repo: repo, cache: c}
}

// Result is one enriched collection plus the references dropped while
// building it.
type Result[T any] struct {
	Items       []T
	Diagnostics resolver.Diagnostics
}

func enrich[T any](ctx context.Context, e *Enricher, collection v1alpha1.Collection, variant string, build func(context.Context, *resolver.Diagnostics) ([]T, error)) (Result[T], error) {
	key := cache.Key{Collection: string(collection), Variant: variant}
	return cache.Load(ctx, e.cache, key, func(ctx context.Context) (Result[T], error) {
		logger := log.FromContext(ctx).WithValues("collection", collection, "variant", variant)
		start := time.Now()

		var diag resolver.Diagnostics
		items, err := build(ctx, &diag)
		metrics.ObserveEnrich(string(collection), start, diag.Len(), err)
		if err != nil {
			return Result[T]{}, err
		}

		for _, u := range diag.Unresolved {
			logger.V(1).Info("dropped unresolved reference", "from", u.From.String(), "relation", u.Relation, "pointer", u.Pointer.String(), "reason", u.Reason)
		}
		logger.V(1).Info("enriched collection", "count", len(items), "unresolved", diag.Len(), "duration", time.Since(start))
		return Result[T]{Items: items, Diagnostics: diag}, nil
	})
}

func versionsVariant(currentOnly bool) string {
	if currentOnly {
		return "currentVersions"
	}
	return "allVersions"
}

// targets drops hidden entries, then keeps only the newest version per id
// when currentOnly is set.
func targets[T catalog.Versioned](pool []T, currentOnly bool) []T {
	visible := resolver.Visible(pool)
	if currentOnly {
		return resolver.CurrentOnly(visible)
	}
	return visible
}

func history[T catalog.Versioned](m resolver.VersionedMap[T], r catalog.Resource) History {
	h := History{
		Versions:      m.Versions(r.ID),
		LatestVersion: m.LatestVersion(r.ID),
	}
	if h.LatestVersion == "" {
		h.LatestVersion = r.Version
	}
	return h
}

// sortByName orders by display name, then newest version first.
func sortByName[T catalog.Versioned](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Base(), items[j].Base()
		if an, bn := a.DisplayName(), b.DisplayName(); an != bn {
			return an < bn
		}
		return semver.CompareStrings(a.Version, b.Version) > 0
	})
}

func containsID[T catalog.Versioned](items []T, id string) bool {
	for _, item := range items {
		if item.Base().ID == id {
			return true
		}
	}
	return false
}
