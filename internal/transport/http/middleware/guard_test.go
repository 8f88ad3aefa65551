package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-signup-gate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func withSession(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, &domain.Session{SessionID: "s1"}))
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		session  bool
		code     int
		location string
	}{
		{"anon dashboard", "/dashboard", false, http.StatusFound, "/unauthenticated"},
		{"anon login", "/auth/login", false, http.StatusOK, ""},
		{"signed in login", "/auth/login", true, http.StatusFound, "/dashboard"},
		{"signed in new password", "/auth/new-password", true, http.StatusOK, ""},
		{"signed in unauthenticated", "/unauthenticated", true, http.StatusFound, "/dashboard"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.session {
				req = withSession(req)
			}
			rr := httptest.NewRecorder()
			Guard(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

			assert.Equal(t, tc.code, rr.Code)
			assert.Equal(t, tc.location, rr.Header().Get("Location"))
		})
	}
}

func TestRedirectWithoutSession(t *testing.T) {
	mw := RedirectWithoutSession("/auth/reset-password")

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/new-password", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth/reset-password", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	mw(http.HandlerFunc(okHandler)).ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/auth/new-password", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
}
