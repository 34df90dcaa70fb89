package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/session-gateway/backend/internal/models"
)

const (
	SessionPrefix = "session:"
	SessionCookie = "session_id"
	SessionHeader = "X-Session-ID"
)

// NewSessionID returns a random UUID v4 in its textual form.
func NewSessionID() string {
	return uuid.NewString()
}

// SessionStore wraps Redis for session records. A zero TTL stores
// records without expiry.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create stores an authenticated session for username under a fresh id.
func (s *SessionStore) Create(ctx context.Context, username string) (string, error) {
	sid := NewSessionID()
	payload, err := json.Marshal(models.Session{Username: username, Authenticated: true})
	if err != nil {
		return "", fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, SessionPrefix+sid, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: set: %w", err)
	}
	return sid, nil
}

// Get returns the session for sessionID, or nil if it does not exist.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.rdb.Get(ctx, SessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &sess, nil
}

type sessionCtxKey struct{}

type sessionCtxValue struct {
	id      string
	session *models.Session
}

// WithSession attaches a loaded session to ctx.
func WithSession(ctx context.Context, id string, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sessionCtxValue{id: id, session: sess})
}

// SessionFromContext returns the session attached by WithSession.
func SessionFromContext(ctx context.Context) (string, *models.Session, bool) {
	v, ok := ctx.Value(sessionCtxKey{}).(sessionCtxValue)
	if !ok || v.session == nil {
		return "", nil, false
	}
	return v.id, v.session, true
}
