package catalog

import (
	"strings"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/semver"
)

// PointerKind discriminates Pointer.
type PointerKind int

const (
	// PointerLatest tracks the current release (version absent or "latest").
	PointerLatest PointerKind = iota
	// PointerExact pins a single version.
	PointerExact
	// PointerRange matches every version satisfying a constraint.
	PointerRange
	// PointerInvalid is neither latest nor a parseable constraint. It only
	// ever matches by raw string equality.
	PointerInvalid
)

func (k PointerKind) String() string {
	switch k {
	case PointerLatest:
		return "latest"
	case PointerExact:
		return "exact"
	case PointerRange:
		return "range"
	default:
		return "invalid"
	}
}

const latestVersion = "latest"

// Pointer is a parsed reference to another resource.
type Pointer struct {
	ID  string
	Raw string
	// Channels are the channels named by a send's `to` or a receive's
	// `from`.
	Channels []Pointer

	kind       PointerKind
	constraint semver.Constraint
}

// Latest returns a pointer tracking the latest version of id.
func Latest(id string) Pointer {
	return Pointer{ID: id, kind: PointerLatest}
}

// ParsePointer classifies a reference. It never fails.
func ParsePointer(ref v1alpha1.Reference) Pointer {
	raw := strings.TrimSpace(ref.Version)
	p := Pointer{ID: strings.TrimSpace(ref.ID), Raw: raw}
	if len(ref.To)+len(ref.From) > 0 {
		p.Channels = append(ParsePointers(ref.To), ParsePointers(ref.From)...)
	}

	if raw == "" || raw == latestVersion {
		p.kind = PointerLatest
		return p
	}

	c, err := semver.ParseConstraint(raw)
	if err != nil {
		p.kind = PointerInvalid
		return p
	}
	p.constraint = c

	if _, err := semver.ParseVersion(raw); err == nil && !strings.ContainsAny(raw, "xX*") {
		p.kind = PointerExact
		return p
	}
	p.kind = PointerRange
	return p
}

// ParsePointers parses a list of references, dropping entries without an id.
func ParsePointers(refs []v1alpha1.Reference) []Pointer {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Pointer, 0, len(refs))
	for _, ref := range refs {
		p := ParsePointer(ref)
		if p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Kind returns the pointer's discriminator.
func (p Pointer) Kind() PointerKind { return p.kind }

// Constraint returns the parsed constraint of an exact or range pointer.
func (p Pointer) Constraint() (semver.Constraint, bool) {
	if p.kind != PointerExact && p.kind != PointerRange {
		return semver.Constraint{}, false
	}
	return p.constraint, true
}

// IsRange reports whether the pointer may resolve to several versions.
// Exact versions count: they are single-point ranges.
func (p Pointer) IsRange() bool {
	return p.kind == PointerExact || p.kind == PointerRange
}

func (p Pointer) String() string {
	if p.kind == PointerLatest {
		return p.ID + "@latest"
	}
	return p.ID + "@" + p.Raw
}
