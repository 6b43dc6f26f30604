package catalog

// Service sends and receives messages.
type Service struct {
	Resource

	Sends     []Pointer
	Receives  []Pointer
	Entities  []Pointer
	WritesTo  []Pointer
	ReadsFrom []Pointer
	Flows     []Pointer
}

// SendChannels returns the channels the first send of messageID goes to.
func (s Service) SendChannels(messageID string) []Pointer {
	return pointerChannels(s.Sends, messageID)
}

// ReceiveChannels returns the channels the first receive of messageID
// comes from.
func (s Service) ReceiveChannels(messageID string) []Pointer {
	return pointerChannels(s.Receives, messageID)
}

func pointerChannels(ptrs []Pointer, id string) []Pointer {
	for _, p := range ptrs {
		if p.ID == id {
			return p.Channels
		}
	}
	return nil
}

// Message is an event, command or query. Kind tells them apart.
type Message struct {
	Resource

	Channels []Pointer
}

// Domain groups services and sub-domains.
type Domain struct {
	Resource

	Services []Pointer
	Domains  []Pointer
	Entities []Pointer
	Flows    []Pointer
}

// DataProduct consumes its inputs and produces its outputs.
type DataProduct struct {
	Resource

	Inputs  []Pointer
	Outputs []Pointer
}

// Channel carries messages. Routes point at downstream channels.
type Channel struct {
	Resource

	Address   string
	Protocols []string
	Routes    []Pointer
}

// Flow is an ordered business process.
type Flow struct {
	Resource

	Steps []FlowStep
}

type FlowStep struct {
	ID      string
	Title   string
	Summary string

	Message *Pointer
	Service *Pointer
	Flow    *Pointer

	Next []StepTransition
}

type StepTransition struct {
	StepID string
	Label  string
}

type Entity struct {
	Resource
}

type Container struct {
	Resource
}
