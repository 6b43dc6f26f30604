// Package catalog holds the typed resource model the engine resolves over.
//
// Descriptors decoded from a store (api/v1alpha1) are converted once into
// these types. Reference pointers are parsed at that point, so lookups never
// re-derive whether a version string is "latest", exact, or a range.
package catalog

import (
	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
)

// Kind is the resource type tag.
type Kind string

const (
	KindService     Kind = "service"
	KindEvent       Kind = "event"
	KindCommand     Kind = "command"
	KindQuery       Kind = "query"
	KindDomain      Kind = "domain"
	KindFlow        Kind = "flow"
	KindChannel     Kind = "channel"
	KindDataProduct Kind = "data-product"
	KindEntity      Kind = "entity"
	KindContainer   Kind = "container"
)

var kindCollections = map[Kind]v1alpha1.Collection{
	KindService:     v1alpha1.CollectionServices,
	KindEvent:       v1alpha1.CollectionEvents,
	KindCommand:     v1alpha1.CollectionCommands,
	KindQuery:       v1alpha1.CollectionQueries,
	KindDomain:      v1alpha1.CollectionDomains,
	KindFlow:        v1alpha1.CollectionFlows,
	KindChannel:     v1alpha1.CollectionChannels,
	KindDataProduct: v1alpha1.CollectionDataProducts,
	KindEntity:      v1alpha1.CollectionEntities,
	KindContainer:   v1alpha1.CollectionContainers,
}

// Collection returns the collection name for k, or "" for unknown kinds.
func (k Kind) Collection() v1alpha1.Collection {
	return kindCollections[k]
}

// IsMessage reports whether k is an event, command or query.
func (k Kind) IsMessage() bool {
	return k == KindEvent || k == KindCommand || k == KindQuery
}

// KindForCollection maps a collection name back to its kind.
func KindForCollection(c v1alpha1.Collection) (Kind, bool) {
	for k, col := range kindCollections {
		if col == c {
			return k, true
		}
	}
	return "", false
}
