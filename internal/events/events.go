// Package events describes the auth lifecycle notifications emitted by the
// HTTP handlers and fans them out to the configured sinks.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	TypeUserRegistered = "user.registered"
	TypeUserLoggedIn   = "user.logged_in"
)

// Event is one auth lifecycle notification.
type Event struct {
	Type       string    `json:"type" bson:"type"`
	Username   string    `json:"username" bson:"username"`
	SessionID  string    `json:"session_id,omitempty" bson:"session_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
