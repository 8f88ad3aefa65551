package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-signup-gate/internal/domain"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*domain.Session, error)
}

// Session resolves the caller's session from the session cookie or a Bearer
// header and stores it in the request context. Requests without a valid
// session pass through untouched; RequireSession and Guard decide what that
// means for a route.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := resolver.GetSession(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects API requests that carry no live session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext extracts the session injected by Session.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*domain.Session)
	return s, ok && s != nil
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
