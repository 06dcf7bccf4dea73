// Package middleware provides HTTP middleware for the ezshare API.
package middleware

import (
	"context"
	"net/http"

	"github.com/ezshare/ezshare/pkg/auth"
	"github.com/ezshare/ezshare/pkg/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "ezshare_session"

// RequireSession returns middleware that resolves the session cookie against
// the registry and rejects the request with 401 otherwise. The session is
// stored in the request context for handlers.
func RequireSession(sessions *auth.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			session, err := sessions.Get(cookie.Value)
			if err != nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission returns middleware that rejects the request with 403
// unless the session's permissions satisfy allowed. Must run after
// RequireSession.
func RequirePermission(allowed func(models.Permissions) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if !allowed(session.Permissions) {
				http.Error(w, "Permission denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext extracts the session placed by RequireSession.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(auth.Session)
	return session, ok
}

// WithSession returns a context carrying the given session. Exposed for
// handler tests.
func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
