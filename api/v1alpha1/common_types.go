package v1alpha1

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Collection names a resource collection as it appears in a catalog tree.
type Collection string

const (
	CollectionServices     Collection = "services"
	CollectionEvents       Collection = "events"
	CollectionCommands     Collection = "commands"
	CollectionQueries      Collection = "queries"
	CollectionDomains      Collection = "domains"
	CollectionFlows        Collection = "flows"
	CollectionChannels     Collection = "channels"
	CollectionDataProducts Collection = "data-products"
	CollectionEntities     Collection = "entities"
	CollectionContainers   Collection = "containers"
)

// Collections lists every collection a store may serve.
var Collections = []Collection{
	CollectionServices,
	CollectionEvents,
	CollectionCommands,
	CollectionQueries,
	CollectionDomains,
	CollectionFlows,
	CollectionChannels,
	CollectionDataProducts,
	CollectionEntities,
	CollectionContainers,
}

// IsKnown reports whether c is one of the collections in Collections.
func (c Collection) IsKnown() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Reference is a declared relationship to another resource.
//
// Version is optional. Absent or "latest" tracks the current release;
// anything else is an exact version or a semver range.
//
// To and From name the channels a service sends a message to or receives it
// from. They are only read on sends and receives.
type Reference struct {
	ID      string      `json:"id"`
	Version string      `json:"version,omitempty"`
	To      []Reference `json:"to,omitempty"`
	From    []Reference `json:"from,omitempty"`
}

// UnmarshalJSON accepts numeric versions (`version: 1`) as well as strings.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string        `json:"id"`
		Version VersionString `json:"version,omitempty"`
		To      []Reference   `json:"to,omitempty"`
		From    []Reference   `json:"from,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Version = string(raw.Version)
	r.To = raw.To
	r.From = raw.From
	return nil
}

// VersionString is a version as written by catalog authors. YAML frontmatter
// frequently carries bare numbers (`version: 2`), so both forms decode.
type VersionString string

func (v *VersionString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = VersionString(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return &json.UnsupportedValueError{Str: trimmed}
	}
	*v = VersionString(trimmed)
	return nil
}

// Entry is a single descriptor as produced by a resource store.
type Entry struct {
	// ID is the store-level identifier (usually the relative file path).
	ID         string     `json:"id"`
	Collection Collection `json:"collectionName"`
	FilePath   string     `json:"filePath,omitempty"`
	Data       Descriptor `json:"data"`
}
