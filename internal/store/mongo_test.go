package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/session-gateway/backend/internal/events"
)

// newTestAuditStore needs a reachable MongoDB at MONGO_TEST_URI and skips otherwise.
func newTestAuditStore(t *testing.T) *MongoAuditStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not available: %v", err)
	}

	db := client.Database("session_gateway_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoAuditStore(db)
}

func TestMongoAuditStore_PublishAndList(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.Publish(ctx, events.Event{Type: events.TypeUserRegistered, Username: "alice", OccurredAt: base}))
	require.NoError(t, s.Publish(ctx, events.Event{Type: events.TypeUserLoggedIn, Username: "alice", SessionID: "sid-1", OccurredAt: base.Add(time.Second)}))
	require.NoError(t, s.Publish(ctx, events.Event{Type: events.TypeUserLoggedIn, Username: "bob", SessionID: "sid-2"}))

	got, err := s.ListByUsername(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeUserLoggedIn, got[0].Type)
	assert.Equal(t, "sid-1", got[0].SessionID)
	assert.Equal(t, events.TypeUserRegistered, got[1].Type)

	got, err = s.ListByUsername(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
