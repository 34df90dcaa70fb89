// Package messaging streams auth events to NATS so other services can react
// to registrations and logins without polling the databases.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ayush/session-gateway/backend/internal/events"
	"github.com/ayush/session-gateway/backend/internal/logging"
)

// SubjectAuth prefixes every auth event subject: auth.<event type>.
const SubjectAuth = "auth"

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int // -1 for infinite
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "session-gateway",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSClient wraps the NATS connection.
type NATSClient struct {
	conn *nats.Conn
	log  logging.Logger
}

// NewNATSClient connects with the given config. It returns an error if the
// initial connection fails; later disconnects are retried by the client.
func NewNATSClient(config NATSConfig, log logging.Logger) (*NATSClient, error) {
	log = log.With("component", "nats")
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn(ctx, "disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info(ctx, "reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info(ctx, "connected", "url", nc.ConnectedUrl())

	return &NATSClient{conn: nc, log: log}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (c *NATSClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.log.Warn(context.Background(), "drain", "err", err)
	}
}

// Subject returns the subject an event type is published on.
func Subject(eventType string) string {
	return SubjectAuth + "." + eventType
}

// RawPublisher is the subject/payload publish call of a NATS connection.
// Both *nats.Conn and *NATSClient satisfy it.
type RawPublisher interface {
	Publish(subject string, data []byte) error
}

// EventPublisher publishes auth events as JSON. It satisfies events.Publisher.
type EventPublisher struct {
	pub RawPublisher
}

func NewEventPublisher(pub RawPublisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) Publish(_ context.Context, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("nats: marshal event: %w", err)
	}
	if err := p.pub.Publish(Subject(ev.Type), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", Subject(ev.Type), err)
	}
	return nil
}
