package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/eventcatalog/catalog-engine/internal/catalog"
)

// Participant is a service or data product that produces or consumes a
// message. Service and DataProduct are only set on hydrated lookups.
type Participant struct {
	catalog.Ref

	Service     *catalog.Service     `json:"service,omitempty"`
	DataProduct *catalog.DataProduct `json:"dataProduct,omitempty"`
}

// Resource returns the full resource of a hydrated participant, or a bare
// resource carrying only the ref fields.
func (p Participant) Resource() catalog.Resource {
	switch {
	case p.Service != nil:
		return p.Service.Resource
	case p.DataProduct != nil:
		return p.DataProduct.Resource
	default:
		return catalog.Resource{Kind: p.Kind, ID: p.ID, Version: p.Version}
	}
}

type Participants struct {
	Producers []Participant
	Consumers []Participant
}

type registration struct {
	participant Participant
	ptr         catalog.Pointer
}

// Index is a reverse map from message id to the services and data products
// that declare it. Version matching happens at lookup time.
type Index struct {
	producers map[string][]registration
	consumers map[string][]registration
}

// BuildIndex scans services (sends/receives) then data products
// (outputs/inputs) once. Hidden participants are skipped.
func BuildIndex(services []catalog.Service, dataProducts []catalog.DataProduct) *Index {
	ix := &Index{
		producers: make(map[string][]registration),
		consumers: make(map[string][]registration),
	}

	for i := range services {
		s := &services[i]
		if s.Hidden {
			continue
		}
		p := Participant{Ref: s.Ref(), Service: s}
		ix.register(ix.producers, p, s.Sends)
		ix.register(ix.consumers, p, s.Receives)
	}
	for i := range dataProducts {
		dp := &dataProducts[i]
		if dp.Hidden {
			continue
		}
		p := Participant{Ref: dp.Ref(), DataProduct: dp}
		ix.register(ix.producers, p, dp.Outputs)
		ix.register(ix.consumers, p, dp.Inputs)
	}
	return ix
}

func (ix *Index) register(into map[string][]registration, p Participant, ptrs []catalog.Pointer) {
	for _, ptr := range ptrs {
		into[ptr.ID] = append(into[ptr.ID], registration{participant: p, ptr: ptr})
	}
}

// Lookup returns the producers and consumers of messageID@messageVersion.
// latestVersion is the message's current latest version, used to match
// latest pointers. With hydrate false, participants carry only their ref.
func (ix *Index) Lookup(messageID, messageVersion, latestVersion string, hydrate bool) Participants {
	return Participants{
		Producers: ix.lookup(ix.producers[messageID], messageVersion, latestVersion, hydrate),
		Consumers: ix.lookup(ix.consumers[messageID], messageVersion, latestVersion, hydrate),
	}
}

// Size returns the number of distinct message ids registered.
func (ix *Index) Size() int {
	ids := sets.KeySet(ix.producers).Union(sets.KeySet(ix.consumers))
	return ids.Len()
}

func (ix *Index) lookup(regs []registration, version, latest string, hydrate bool) []Participant {
	if len(regs) == 0 {
		return nil
	}
	seen := sets.New[catalog.Ref]()
	var out []Participant
	for _, r := range regs {
		if !Matches(version, r.ptr, latest) {
			continue
		}
		if seen.Has(r.participant.Ref) {
			continue
		}
		seen.Insert(r.participant.Ref)
		p := r.participant
		if !hydrate {
			p = Participant{Ref: p.Ref}
		}
		out = append(out, p)
	}
	return out
}
