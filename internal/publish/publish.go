// Package publish announces catalog and graph changes on an event bus.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher is the minimal event-publishing seam.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close() error
}

// CatalogChanged is published after a burst of descriptor file changes has
// been loaded.
type CatalogChanged struct {
	Paths      []string  `json:"paths"`
	Unresolved int       `json:"unresolved"`
	At         time.Time `json:"at"`
}

// GraphUpdated is published after a focus graph has been rebuilt.
type GraphUpdated struct {
	Focus string    `json:"focus"`
	Nodes int       `json:"nodes"`
	Edges int       `json:"edges"`
	At    time.Time `json:"at"`
}

// Notifier publishes typed events under a common subject prefix:
// "<prefix>.changed" and "<prefix>.graph".
type Notifier struct {
	Publisher Publisher
	Prefix    string
}

func (n *Notifier) CatalogChanged(ctx context.Context, ev CatalogChanged) error {
	return n.publish(ctx, "changed", ev)
}

func (n *Notifier) GraphUpdated(ctx context.Context, ev GraphUpdated) error {
	return n.publish(ctx, "graph", ev)
}

func (n *Notifier) publish(ctx context.Context, suffix string, ev any) error {
	if n == nil || n.Publisher == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("publish: encode %s: %w", suffix, err)
	}
	subject := n.Prefix + "." + suffix
	if err := n.Publisher.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (n *Notifier) Close() error {
	if n == nil || n.Publisher == nil {
		return nil
	}
	return n.Publisher.Close()
}
