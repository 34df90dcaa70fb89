package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/session-gateway/backend/internal/events"
	"github.com/ayush/session-gateway/backend/internal/logging"
	"github.com/ayush/session-gateway/backend/internal/metrics"
	"github.com/ayush/session-gateway/backend/internal/models"
	"github.com/ayush/session-gateway/backend/internal/store"
)

const (
	msgRegistered = "Registration successful!"
	msgLoggedIn   = "Login successful!"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPw string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuditLog reads back the auth events recorded for a user, newest first.
type AuditLog interface {
	ListByUsername(ctx context.Context, username string, limit int64) ([]events.Event, error)
}

// Audit trail page sizes for GET /api/session/events.
const (
	DefaultEventsLimit = 50
	MaxEventsLimit     = 200
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions *SessionStore
	authn    Authenticator
	events   events.Publisher
	audit    AuditLog
	log      logging.Logger
}

func NewHandler(users UserStore, sessions *SessionStore, authn Authenticator, pub events.Publisher, log logging.Logger) *Handler {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Handler{users: users, sessions: sessions, authn: authn, events: pub, log: log.With("component", "auth")}
}

// WithAuditLog enables the session events endpoint.
func (h *Handler) WithAuditLog(audit AuditLog) *Handler {
	h.audit = audit
	return h
}

// decodeCredentials writes a 400 and returns false when the body is not
// usable credentials.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var req models.Credentials
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "username and password are required")
		return req, false
	}
	return req, true
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return
	}

	hashed, err := HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		WriteError(w, http.StatusBadRequest, "password must be at most 72 bytes")
		return
	}
	if err != nil {
		h.log.Error(r.Context(), "hash password", "err", err)
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.users.CreateUser(r.Context(), req.Username, hashed); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeConflict).Inc()
			WriteError(w, http.StatusConflict, "username already exists")
			return
		}
		h.log.Error(r.Context(), "create user", "username", req.Username, "err", err)
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	h.log.Info(r.Context(), "user registered", "username", req.Username)
	h.publish(r.Context(), events.Event{Type: events.TypeUserRegistered, Username: req.Username})
	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: msgRegistered})
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return
	}

	if err := h.authn.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
			WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error(r.Context(), "authenticate", "username", req.Username, "err", err)
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sid, err := h.sessions.Create(r.Context(), req.Username)
	if err != nil {
		h.log.Error(r.Context(), "create session", "username", req.Username, "err", err)
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		WriteError(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL() / time.Second),
	})

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	h.log.Info(r.Context(), "session created", "username", req.Username)
	h.publish(r.Context(), events.Event{Type: events.TypeUserLoggedIn, Username: req.Username, SessionID: sid})
	WriteJSON(w, http.StatusOK, models.LoginResponse{Message: msgLoggedIn, SessionID: sid})
}

// Session returns the session loaded by the session middleware.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

// SessionEvents returns the audit trail of the session's user. The optional
// limit query parameter is clamped to MaxEventsLimit.
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if h.audit == nil {
		WriteError(w, http.StatusNotFound, "audit log not enabled")
		return
	}

	limit := int64(DefaultEventsLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventsLimit)
	}

	list, err := h.audit.ListByUsername(r.Context(), sess.Username, limit)
	if err != nil {
		h.log.Error(r.Context(), "list auth events", "username", sess.Username, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []events.Event{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// publish never fails the request; sinks are best effort.
func (h *Handler) publish(ctx context.Context, ev events.Event) {
	ev.OccurredAt = time.Now().UTC()
	if err := h.events.Publish(ctx, ev); err != nil {
		metrics.EventPublishFailures.Inc()
		h.log.Warn(ctx, "publish auth event", "type", ev.Type, "err", err)
	}
}
