package messaging_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/session-gateway/backend/internal/events"
	"github.com/ayush/session-gateway/backend/internal/messaging"
)

var (
	_ messaging.RawPublisher = (*nats.Conn)(nil)
	_ messaging.RawPublisher = (*messaging.NATSClient)(nil)
	_ events.Publisher       = (*messaging.EventPublisher)(nil)
)

type subjectRecorder []string

func (s *subjectRecorder) Publish(subject string, _ []byte) error {
	*s = append(*s, subject)
	return nil
}

func TestNewEventPublisher_AcceptsExternalConn(t *testing.T) {
	var raw messaging.RawPublisher = &subjectRecorder{}

	pub := messaging.NewEventPublisher(raw)
	require.NoError(t, pub.Publish(context.Background(), events.Event{Type: events.TypeUserRegistered, Username: "alice"}))

	assert.Equal(t, []string{"auth.user.registered"}, []string(*raw.(*subjectRecorder)))
}
