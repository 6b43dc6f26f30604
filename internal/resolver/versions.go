package resolver

import (
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/semver"
)

// VersionedMap groups visible resources by id, newest version first.
type VersionedMap[T catalog.Versioned] struct {
	byID map[string][]T
}

// NewVersionedMap groups pool by id. Hidden entries are left out, so they
// never become anyone's latest version.
func NewVersionedMap[T catalog.Versioned](pool []T) VersionedMap[T] {
	m := VersionedMap[T]{byID: make(map[string][]T)}
	for _, item := range pool {
		r := item.Base()
		if r.Hidden {
			continue
		}
		m.byID[r.ID] = append(m.byID[r.ID], item)
	}
	for id := range m.byID {
		semver.SortDescending(m.byID[id], func(item T) string { return item.Base().Version })
	}
	return m
}

// Latest returns the newest visible entry for id.
func (m VersionedMap[T]) Latest(id string) (T, bool) {
	entries := m.byID[id]
	if len(entries) == 0 {
		var zero T
		return zero, false
	}
	return entries[0], true
}

// LatestVersion returns the newest visible version of id, or "".
func (m VersionedMap[T]) LatestVersion(id string) string {
	latest, ok := m.Latest(id)
	if !ok {
		return ""
	}
	return latest.Base().Version
}

// Versions returns every visible version of id, newest first.
func (m VersionedMap[T]) Versions(id string) []string {
	entries := m.byID[id]
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Base().Version)
	}
	return semver.SortStrings(out)
}

// Get returns the entry with the exact id and version.
func (m VersionedMap[T]) Get(id, version string) (T, bool) {
	for _, e := range m.byID[id] {
		if e.Base().Version == version {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Find resolves ptr to its single best visible match.
func (m VersionedMap[T]) Find(ptr catalog.Pointer) (T, bool) {
	return FindOne(m.byID[ptr.ID], ptr)
}

// Visible drops hidden entries from pool, preserving order.
func Visible[T catalog.Versioned](pool []T) []T {
	out := make([]T, 0, len(pool))
	for _, item := range pool {
		if item.Base().Hidden {
			continue
		}
		out = append(out, item)
	}
	return out
}

// CurrentOnly keeps the newest entry per id, preserving the order in which ids
// first appear.
func CurrentOnly[T catalog.Versioned](pool []T) []T {
	m := NewVersionedMap(pool)
	seen := make(map[string]struct{})
	out := make([]T, 0, len(pool))
	for _, item := range pool {
		id := item.Base().ID
		if _, ok := seen[id]; ok {
			continue
		}
		latest, ok := m.Latest(id)
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, latest)
	}
	return out
}
