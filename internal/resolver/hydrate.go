package resolver

import (
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/semver"
)

// Hydrate resolves ptr against pool.
//
// Exact and range pointers return every entry with ptr.ID whose version
// satisfies the range, so a range may fan out to several versions. Latest and
// invalid pointers return at most one entry: the highest version of ptr.ID.
// The result is newest first.
func Hydrate[T catalog.Versioned](pool []T, ptr catalog.Pointer) []T {
	candidates := sameID(pool, ptr.ID)
	if len(candidates) == 0 {
		return nil
	}

	if !ptr.IsRange() {
		return candidates[:1]
	}

	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c.Base().Version, ptr, "") {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FindOne resolves ptr to its single best match: the highest satisfying
// version for ranges, the latest version otherwise.
func FindOne[T catalog.Versioned](pool []T, ptr catalog.Pointer) (T, bool) {
	matches := Hydrate(pool, ptr)
	if len(matches) == 0 {
		var zero T
		return zero, false
	}
	return matches[0], true
}

// HydrateAll resolves every pointer in ptrs, dropping duplicates. miss is
// called for each pointer that resolved to nothing; it may be nil.
func HydrateAll[T catalog.Versioned](pool []T, ptrs []catalog.Pointer, miss func(catalog.Pointer)) []T {
	if len(ptrs) == 0 {
		return nil
	}
	var out []T
	seen := make(map[string]struct{})
	for _, ptr := range ptrs {
		matches := Hydrate(pool, ptr)
		if len(matches) == 0 {
			if miss != nil {
				miss(ptr)
			}
			continue
		}
		for _, m := range matches {
			key := m.Base().NodeID()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// sameID returns the entries of pool with the given id, newest first.
func sameID[T catalog.Versioned](pool []T, id string) []T {
	var out []T
	for _, item := range pool {
		if item.Base().ID == id {
			out = append(out, item)
		}
	}
	semver.SortDescending(out, func(item T) string { return item.Base().Version })
	return out
}
