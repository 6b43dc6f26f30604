package v1alpha1

// Descriptor is the frontmatter of a catalog resource.
//
// A single shape covers every collection; fields that do not apply to a
// collection are simply left empty by authors.
type Descriptor struct {
	ID      string        `json:"id"`
	Name    string        `json:"name,omitempty"`
	Version VersionString `json:"version"`
	Summary string        `json:"summary,omitempty"`
	Hidden  bool          `json:"hidden,omitempty"`
	Owners  []string      `json:"owners,omitempty"`

	// Services.
	Sends     []Reference `json:"sends,omitempty"`
	Receives  []Reference `json:"receives,omitempty"`
	WritesTo  []Reference `json:"writesTo,omitempty"`
	ReadsFrom []Reference `json:"readsFrom,omitempty"`

	// Services and domains.
	Entities []Reference `json:"entities,omitempty"`
	Flows    []Reference `json:"flows,omitempty"`

	// Domains.
	Services []Reference `json:"services,omitempty"`
	Domains  []Reference `json:"domains,omitempty"`

	// Messages.
	Channels []Reference `json:"channels,omitempty"`

	// Data products.
	Inputs  []Reference `json:"inputs,omitempty"`
	Outputs []Reference `json:"outputs,omitempty"`

	// Channels.
	Address   string      `json:"address,omitempty"`
	Protocols []string    `json:"protocols,omitempty"`
	Routes    []Reference `json:"routes,omitempty"`

	// Flows.
	Steps []FlowStep `json:"steps,omitempty"`
}
