// Package graph builds node/edge graphs of catalog relationships for a
// rendering layer.
//
// A graph is always built around one focus resource: a service, message,
// domain, data product, flow or container. Sub-graphs that share nodes are combined with
// Merge, which applies explicit per-field rules instead of a deep merge.
package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

var ErrUnknownRole = errors.New("graph: unknown focus role")

// Role is the kind of resource a graph is focused on.
type Role string

const (
	RoleService     Role = "service"
	RoleMessage     Role = "message"
	RoleDomain      Role = "domain"
	RoleDataProduct Role = "data-product"
	RoleFlow        Role = "flow"
	RoleContainer   Role = "container"
)

// Roles lists every role Build accepts.
var Roles = []Role{RoleService, RoleMessage, RoleDomain, RoleDataProduct, RoleFlow, RoleContainer}

// ParseRole maps a role name to a Role. Message kinds ("event", "command",
// "query") are accepted as RoleMessage.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleService, RoleMessage, RoleDomain, RoleDataProduct, RoleFlow, RoleContainer:
		return r, nil
	case Role(catalog.KindEvent), Role(catalog.KindCommand), Role(catalog.KindQuery):
		return RoleMessage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Focus names the resource a graph is centred on.
type Focus struct {
	Role    Role
	ID      string
	Version string
}

func (f Focus) String() string {
	if f.Version == "" {
		return string(f.Role) + ":" + f.ID
	}
	return string(f.Role) + ":" + f.ID + "@" + f.Version
}

// ParseFocus parses "role:id" or "role:id@version".
func ParseFocus(s string) (Focus, error) {
	rawRole, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Focus{}, fmt.Errorf("graph: focus %q: want role:id[@version]", s)
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Focus{}, err
	}
	f := Focus{Role: role, ID: rest}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		f.ID, f.Version = rest[:i], rest[i+1:]
	}
	if f.ID == "" {
		return Focus{}, fmt.Errorf("graph: focus %q: empty id", s)
	}
	return f, nil
}

// Mode selects how much detail node renderers show.
type Mode string

const (
	ModeSimple Mode = "simple"
	ModeFull   Mode = "full"
)

// ChannelMode selects how channel nodes are keyed.
type ChannelMode string

const (
	// ChannelSingle renders one node per channel.
	ChannelSingle ChannelMode = "single"
	// ChannelFlat renders one node per source/channel/target connection.
	ChannelFlat ChannelMode = "flat"
)

// Node types, named after the collection of the resource they render.
const (
	TypeService     = "services"
	TypeDataProduct = "data-products"
	TypeChannel     = "channels"
	TypeDomain      = "domains"
	TypeFlow        = "flows"
	// TypeStep renders a flow step whose resource is missing or that names
	// none.
	TypeStep      = "step"
	TypeContainer = "data"
)

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Position       Position `json:"position"`
	SourcePosition string   `json:"sourcePosition"`
	TargetPosition string   `json:"targetPosition"`
	Data           NodeData `json:"data"`
}

// NodeData carries exactly one payload variant. ShowSource and ShowTarget
// toggle the outgoing and incoming connection handles.
type NodeData struct {
	Mode       Mode   `json:"mode"`
	Title      string `json:"title,omitempty"`
	ShowSource bool   `json:"showSource"`
	ShowTarget bool   `json:"showTarget"`
	Group      *Group `json:"group,omitempty"`

	Service     *ResourcePayload `json:"service,omitempty"`
	Message     *MessagePayload  `json:"message,omitempty"`
	DataProduct *ResourcePayload `json:"dataProduct,omitempty"`
	Domain      *ResourcePayload `json:"domain,omitempty"`
	Channel     *ChannelPayload  `json:"channel,omitempty"`
	Step        *StepPayload     `json:"step,omitempty"`
	Flow        *ResourcePayload `json:"flow,omitempty"`
	Container   *ResourcePayload `json:"container,omitempty"`
}

// Group is the owning domain a node is drawn inside.
type Group struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Label   string `json:"label"`
}

type ResourcePayload struct {
	catalog.Ref
	Name    string   `json:"name,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Owners  []string `json:"owners,omitempty"`
}

type MessagePayload struct {
	ResourcePayload
	// ProducedBy and ConsumedBy are the participants seen in this graph.
	ProducedBy []catalog.Ref `json:"producedBy,omitempty"`
	ConsumedBy []catalog.Ref `json:"consumedBy,omitempty"`
}

type ChannelPayload struct {
	ResourcePayload
	Address     string       `json:"address,omitempty"`
	Protocols   []string     `json:"protocols,omitempty"`
	ChannelMode ChannelMode  `json:"channelMode"`
	Source      *catalog.Ref `json:"source,omitempty"`
	Target      *catalog.Ref `json:"target,omitempty"`
}

type StepPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type Edge struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Label     string    `json:"label"`
	Type      string    `json:"type,omitempty"`
	Animated  bool      `json:"animated"`
	Style     EdgeStyle `json:"style"`
	MarkerEnd Marker    `json:"markerEnd"`
	// MarkerStart is set on edges that point back at their source.
	MarkerStart *Marker `json:"markerStart,omitempty"`
}

type EdgeStyle struct {
	StrokeWidth int    `json:"strokeWidth"`
	Stroke      string `json:"stroke,omitempty"`
}

type Marker struct {
	Type   string `json:"type"`
	Color  string `json:"color,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func payload(r catalog.Resource) ResourcePayload {
	return ResourcePayload{Ref: r.Ref(), Name: r.Name, Summary: r.Summary, Owners: r.Owners}
}

// NodeID is the identity of r in a graph: "<id>-<version>".
func NodeID(r catalog.Resource) string {
	return r.NodeID()
}

// EdgeID is "<source id>-<source version>-<target id>-<target version>".
func EdgeID(source, target catalog.Resource) string {
	return source.NodeID() + "-" + target.NodeID()
}

// JoinedID joins the node ids of every resource with "-".
func JoinedID(resources ...catalog.Resource) string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.NodeID()
	}
	return strings.Join(ids, "-")
}

func newEdge(id, source, target, label string) Edge {
	return Edge{
		ID:        id,
		Source:    source,
		Target:    target,
		Label:     label,
		Style:     EdgeStyle{StrokeWidth: 1},
		MarkerEnd: Marker{Type: "arrowclosed", Width: 40, Height: 40},
	}
}

func newNode(id, typ string, data NodeData) Node {
	return Node{
		ID:             id,
		Type:           typ,
		SourcePosition: "right",
		TargetPosition: "left",
		Data:           data,
	}
}
