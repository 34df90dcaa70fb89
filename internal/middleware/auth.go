package middleware

import (
	"net/http"

	"github.com/ayush/session-gateway/backend/internal/auth"
)

// RequireSession is middleware that resolves the session id from the
// X-Session-ID header (or the session cookie), loads the record and
// injects it into the request context.
func RequireSession(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(auth.SessionHeader)
			if sid == "" {
				if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
					sid = cookie.Value
				}
			}
			if sid == "" {
				auth.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := sessions.Get(r.Context(), sid)
			if err != nil {
				auth.WriteError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			if sess == nil || !sess.Authenticated {
				auth.WriteError(w, http.StatusUnauthorized, "unknown session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sid, sess)))
		})
	}
}
