package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/edusocial/edusocial/internal/logging"
)

// NATSPublisher mirrors notification events onto NATS subjects so other
// consumers (push delivery, analytics) can react without polling. Publishes
// are fire and forget; a broker outage only costs the mirror, never the
// stored notification.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("edusocial"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal event", map[string]interface{}{
			"error":   err.Error(),
			"subject": subject,
		})
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		logging.Warn("Failed to publish event", map[string]interface{}{
			"error":   err.Error(),
			"subject": subject,
		})
	}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(subject string, payload any) {}

func (NoopPublisher) Close() {}
