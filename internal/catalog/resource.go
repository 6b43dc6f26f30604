package catalog

// Resource is the part every versioned catalog entity shares.
type Resource struct {
	Kind     Kind
	ID       string
	Version  string
	Name     string
	Summary  string
	Owners   []string
	Hidden   bool
	FilePath string
}

// Base returns r. Every typed resource embeds Resource, so Base lets generic
// code reach the shared fields regardless of the concrete type.
func (r Resource) Base() Resource { return r }

// DisplayName is Name, or ID when no name was given.
func (r Resource) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// NodeID is the graph identity of this resource instance.
func (r Resource) NodeID() string {
	return r.ID + "-" + r.Version
}

// Ref is the lightweight {kind, id, version} form of r.
func (r Resource) Ref() Ref {
	return Ref{Kind: r.Kind, ID: r.ID, Version: r.Version}
}

// Ref identifies a single resource instance.
type Ref struct {
	Kind    Kind   `json:"kind"`
	ID      string `json:"id"`
	Version string `json:"version"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID + "@" + r.Version
}

// Versioned is satisfied by every typed resource.
type Versioned interface {
	Base() Resource
}
