package graph

import "github.com/eventcatalog/catalog-engine/internal/catalog"

// SendLabel labels an edge from a service to a message it sends.
func SendLabel(k catalog.Kind) string {
	switch k {
	case catalog.KindEvent:
		return "publishes event"
	case catalog.KindCommand:
		return "invokes command"
	case catalog.KindQuery:
		return "requests"
	default:
		return "invokes message"
	}
}

// ReceiveLabel labels an edge from a message to a service receiving it.
func ReceiveLabel(k catalog.Kind) string {
	switch k {
	case catalog.KindEvent:
		return "receives event"
	case catalog.KindCommand, catalog.KindQuery:
		return "accepts"
	default:
		return "accepts message"
	}
}

// ProducerLabel labels a producer to message edge in a message-centred graph.
func ProducerLabel(k catalog.Kind) string {
	switch k {
	case catalog.KindEvent:
		return "publishes event"
	case catalog.KindCommand:
		return "invokes"
	case catalog.KindQuery:
		return "requests"
	default:
		return "sends to"
	}
}

// ConsumerLabel labels a message to consumer edge in a message-centred graph.
func ConsumerLabel(k catalog.Kind) string {
	switch k {
	case catalog.KindEvent:
		return "subscribed by"
	case catalog.KindCommand, catalog.KindQuery:
		return "accepts"
	default:
		return "sends to"
	}
}

const (
	bothLabel   = "publishes and subscribes"
	inputLabel  = "input"
	outputLabel = "output"
	routesLabel = "routes to"

	writesLabel     = "writes to"
	readsLabel      = "reads from"
	readWritesLabel = "reads and writes to"
)
