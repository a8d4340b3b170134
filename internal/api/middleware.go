// Package api implements the journal REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/duetlabs/duet/internal/credential"
	"github.com/duetlabs/duet/internal/session"
)

type contextKey int

const sessionKey contextKey = iota

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// sessionFrom returns the authenticated session stored by RequireSession.
func sessionFrom(r *http.Request) (session.Session, bool) {
	sess, ok := r.Context().Value(sessionKey).(session.Session)
	return sess, ok
}

// RequireSession returns middleware that resolves the bearer token to a live
// session and stores it on the request context. Requests without one get a
// 401.
func RequireSession(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessions.Resolve(bearerToken(r))
			if !ok {
				writeJSON(w, http.StatusUnauthorized, detailBody("Not authenticated"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
		})
	}
}

// RequireAuthor returns middleware demanding the author role on an already
// resolved session. Viewer sessions get a 403; there is no escalation path.
func RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(r)
		if !ok || sess.Role != credential.RoleAuthor {
			writeJSON(w, http.StatusForbidden, detailBody("Author access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
