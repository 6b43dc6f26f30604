// Package collections enriches raw catalog resources with resolved
// relationships, version history and producer/consumer participants.
package collections

import (
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
)

// Options controls services, channels, flows and data products.
type Options struct {
	// CurrentOnly keeps only the newest version of each id.
	CurrentOnly bool
}

// MessageOptions controls events, commands and queries.
type MessageOptions struct {
	CurrentOnly bool
	// Minimal strips producers and consumers down to {kind, id, version}.
	Minimal bool
}

// DomainOptions controls domains.
type DomainOptions struct {
	CurrentOnly bool
	// ExcludeSubdomainServices leaves services of sub-domains out of
	// Resolved.Services.
	ExcludeSubdomainServices bool
	// EnrichServices resolves the messages and containers of every domain
	// service.
	EnrichServices bool
}

// History is the version information shared by every enriched resource.
type History struct {
	Versions      []string `json:"versions"`
	LatestVersion string   `json:"latestVersion"`
}

// IsLatest reports whether version is the current release.
func (h History) IsLatest(version string) bool {
	return version == h.LatestVersion
}

type ServiceRelations struct {
	Sends     []catalog.Message
	Receives  []catalog.Message
	Entities  []catalog.Entity
	WritesTo  []catalog.Container
	ReadsFrom []catalog.Container
	Flows     []catalog.Flow
}

type Service struct {
	catalog.Service
	History

	Resolved ServiceRelations
}

type MessageRelations struct {
	Channels []catalog.Channel
}

type Message struct {
	catalog.Message
	History

	Producers []resolver.Participant
	Consumers []resolver.Participant
	Resolved  MessageRelations
}

type DomainRelations struct {
	Services []Service
	// Domains are the resolved sub-domains, self references removed. Only
	// their Resolved.Services are populated.
	Domains  []Domain
	Entities []catalog.Entity
	Flows    []catalog.Flow
}

type Domain struct {
	catalog.Domain
	History

	Resolved DomainRelations
}

// HasEntities reports whether the domain declares any entity.
func (d Domain) HasEntities() bool {
	return len(d.Entities) > 0
}

type DataProductRelations struct {
	Inputs  []catalog.Message
	Outputs []catalog.Message
}

type DataProduct struct {
	catalog.DataProduct
	History

	Resolved DataProductRelations
}

type Channel struct {
	catalog.Channel
	History

	// Messages declare this channel version.
	Messages []catalog.Message
}

type FlowStep struct {
	catalog.FlowStep

	ResolvedMessage *catalog.Message
	ResolvedService *catalog.Service
	ResolvedFlow    *catalog.Flow
}

type Flow struct {
	catalog.Flow
	History

	ResolvedSteps []FlowStep
}

type ContainerRelations struct {
	WrittenBy []catalog.Service
	ReadBy    []catalog.Service
}

type Container struct {
	catalog.Container
	History

	Resolved ContainerRelations
}
