package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

type natsPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher connects to url, or nats.DefaultURL when url is empty.
func NewNATSPublisher(ctx context.Context, url string) (Publisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	logger := log.FromContext(ctx).WithName("nats").WithValues("url", url)

	nc, err := nats.Connect(url,
		nats.Name("eventcatalog-engine"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, "disconnected")
			}
		}),
		nats.ReconnectHandler(func(*nats.Conn) { logger.Info("reconnected") }),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &natsPublisher{nc: nc}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	log.FromContext(ctx).V(1).Info("publishing", "subject", subject, "bytes", len(payload))
	return p.nc.Publish(subject, payload)
}

// Close flushes pending messages before closing the connection.
func (p *natsPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
