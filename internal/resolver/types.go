package resolver

import (
	"fmt"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

// Diagnostics captures references that could not be resolved during an
// enrichment pass.
//
// Unresolved references are never errors. They are dropped from derived
// lists and recorded here for logging and metrics.
type Diagnostics struct {
	Unresolved []UnresolvedReference
}

type UnresolvedReference struct {
	From     catalog.Ref
	Relation string
	Pointer  catalog.Pointer
	Reason   string
}

func (u UnresolvedReference) String() string {
	return fmt.Sprintf("%s %s %s: %s", u.From, u.Relation, u.Pointer, u.Reason)
}

// Add records an unresolved reference.
func (d *Diagnostics) Add(from catalog.Ref, relation string, ptr catalog.Pointer, reason string) {
	d.Unresolved = append(d.Unresolved, UnresolvedReference{
		From:     from,
		Relation: relation,
		Pointer:  ptr,
		Reason:   reason,
	})
}

// Miss returns a callback for HydrateAll that records misses for relation.
func (d *Diagnostics) Miss(from catalog.Ref, relation string) func(catalog.Pointer) {
	return func(ptr catalog.Pointer) {
		d.Add(from, relation, ptr, "no matching resource found")
	}
}

// Merge appends other's entries to d.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Unresolved = append(d.Unresolved, other.Unresolved...)
}

func (d Diagnostics) Len() int { return len(d.Unresolved) }
