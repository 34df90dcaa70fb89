package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/session-gateway/backend/internal/auth"
	"github.com/ayush/session-gateway/backend/internal/metrics"
)

func newSessions(t *testing.T) (*auth.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return auth.NewSessionStore(rdb, 0), mr
}

func echoSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(id + ":" + sess.Username))
}

func TestRequireSession(t *testing.T) {
	sessions, mr := newSessions(t)
	sid, err := sessions.Create(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, mr.Set(auth.SessionPrefix+"broken", "{"))

	h := RequireSession(sessions)(http.HandlerFunc(echoSession))

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode int
		wantBody string
	}{
		{"header", sid, "", http.StatusOK, sid + ":alice"},
		{"cookie", "", sid, http.StatusOK, sid + ":alice"},
		{"header wins over cookie", sid, "other", http.StatusOK, sid + ":alice"},
		{"missing", "", "", http.StatusUnauthorized, `{"error":"not authenticated"}`},
		{"unknown", "does-not-exist", "", http.StatusUnauthorized, `{"error":"unknown session"}`},
		{"corrupt record", "broken", "", http.StatusInternalServerError, `{"error":"session lookup failed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
			if tt.header != "" {
				req.Header.Set(auth.SessionHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestMetrics_ObservesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	before := testutil.CollectAndCount(metrics.RequestDuration)
	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	// Both requests land on the same series.
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.RequestDuration))
}
