package catalog

import (
	"strings"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
)

// ResourceFromEntry extracts the shared fields of e.
func ResourceFromEntry(kind Kind, e v1alpha1.Entry) Resource {
	id := strings.TrimSpace(e.Data.ID)
	if id == "" {
		id = e.ID
	}
	return Resource{
		Kind:     kind,
		ID:       id,
		Version:  strings.TrimSpace(string(e.Data.Version)),
		Name:     e.Data.Name,
		Summary:  e.Data.Summary,
		Owners:   e.Data.Owners,
		Hidden:   e.Data.Hidden,
		FilePath: e.FilePath,
	}
}

func ServiceFromEntry(e v1alpha1.Entry) Service {
	d := e.Data
	return Service{
		Resource:  ResourceFromEntry(KindService, e),
		Sends:     ParsePointers(d.Sends),
		Receives:  ParsePointers(d.Receives),
		Entities:  ParsePointers(d.Entities),
		WritesTo:  ParsePointers(d.WritesTo),
		ReadsFrom: ParsePointers(d.ReadsFrom),
		Flows:     ParsePointers(d.Flows),
	}
}

// MessageFromEntry converts an event, command or query entry.
func MessageFromEntry(kind Kind, e v1alpha1.Entry) Message {
	return Message{
		Resource: ResourceFromEntry(kind, e),
		Channels: ParsePointers(e.Data.Channels),
	}
}

func DomainFromEntry(e v1alpha1.Entry) Domain {
	d := e.Data
	return Domain{
		Resource: ResourceFromEntry(KindDomain, e),
		Services: ParsePointers(d.Services),
		Domains:  ParsePointers(d.Domains),
		Entities: ParsePointers(d.Entities),
		Flows:    ParsePointers(d.Flows),
	}
}

func DataProductFromEntry(e v1alpha1.Entry) DataProduct {
	return DataProduct{
		Resource: ResourceFromEntry(KindDataProduct, e),
		Inputs:   ParsePointers(e.Data.Inputs),
		Outputs:  ParsePointers(e.Data.Outputs),
	}
}

func ChannelFromEntry(e v1alpha1.Entry) Channel {
	return Channel{
		Resource:  ResourceFromEntry(KindChannel, e),
		Address:   e.Data.Address,
		Protocols: e.Data.Protocols,
		Routes:    ParsePointers(e.Data.Routes),
	}
}

func FlowFromEntry(e v1alpha1.Entry) Flow {
	f := Flow{Resource: ResourceFromEntry(KindFlow, e)}
	for _, s := range e.Data.Steps {
		step := FlowStep{
			ID:      string(s.ID),
			Title:   s.Title,
			Summary: s.Summary,
			Message: optionalPointer(s.Message),
			Service: optionalPointer(s.Service),
			Flow:    optionalPointer(s.Flow),
		}
		if s.NextStep != nil {
			step.Next = append(step.Next, StepTransition{StepID: string(s.NextStep.ID), Label: s.NextStep.Label})
		}
		for _, n := range s.NextSteps {
			step.Next = append(step.Next, StepTransition{StepID: string(n.ID), Label: n.Label})
		}
		f.Steps = append(f.Steps, step)
	}
	return f
}

func EntityFromEntry(e v1alpha1.Entry) Entity {
	return Entity{Resource: ResourceFromEntry(KindEntity, e)}
}

func ContainerFromEntry(e v1alpha1.Entry) Container {
	return Container{Resource: ResourceFromEntry(KindContainer, e)}
}

func optionalPointer(ref *v1alpha1.Reference) *Pointer {
	if ref == nil || strings.TrimSpace(ref.ID) == "" {
		return nil
	}
	p := ParsePointer(*ref)
	return &p
}

// ConvertAll applies fn to every entry.
func ConvertAll[T any](entries []v1alpha1.Entry, fn func(v1alpha1.Entry) T) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, fn(e))
	}
	return out
}
