package store

import (
	"context"
	"fmt"
	"sync"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
)

// MemoryStore serves entries supplied in process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[v1alpha1.Collection][]v1alpha1.Entry
}

func NewMemoryStore(entries ...v1alpha1.Entry) *MemoryStore {
	s := &MemoryStore{entries: make(map[v1alpha1.Collection][]v1alpha1.Entry)}
	s.Add(entries...)
	return s
}

// Add appends entries to their collections.
func (s *MemoryStore) Add(entries ...v1alpha1.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.Collection] = append(s.entries[e.Collection], e)
	}
}

// Replace swaps the contents of the store.
func (s *MemoryStore) Replace(entries ...v1alpha1.Entry) {
	s.mu.Lock()
	s.entries = make(map[v1alpha1.Collection][]v1alpha1.Entry)
	s.mu.Unlock()
	s.Add(entries...)
}

func (s *MemoryStore) Entries(ctx context.Context, c v1alpha1.Collection) ([]v1alpha1.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]v1alpha1.Entry, len(s.entries[c]))
	copy(out, s.entries[c])
	return out, nil
}
