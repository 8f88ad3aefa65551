package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDashboard_ReturnsUser(t *testing.T) {
	h := NewPageHandler()
	sess := &domain.Session{SessionID: "s1", User: &domain.User{UserID: "u1", Email: "ana@example.com"}}

	rr := httptest.NewRecorder()
	h.Dashboard(rr, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode[PageEnvelope](t, rr)
	assert.Equal(t, "dashboard", env.Page)
	require.NotNil(t, env.User)
	assert.Equal(t, "ana@example.com", env.User.Email)
}

func TestAuthPage_KnownAndUnknown(t *testing.T) {
	h := NewPageHandler()

	rr := httptest.NewRecorder()
	h.Auth(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/auth/login", nil), "page", "login"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "login", decode[PageEnvelope](t, rr).Page)

	rr = httptest.NewRecorder()
	h.Auth(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/auth/verify", nil), "page", "verify"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "verify", decode[PageEnvelope](t, rr).Page)

	rr = httptest.NewRecorder()
	h.Auth(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/auth/admin", nil), "page", "admin"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouteAccess(t *testing.T) {
	h := NewPageHandler()

	rr := httptest.NewRecorder()
	h.RouteAccess(rr, httptest.NewRequest(http.MethodGet, "/v1/route-access?path=/dashboard/settings", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, guard.Decision{RedirectTo: guard.PathUnauthenticated}, decode[guard.Decision](t, rr))

	rr = httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/v1/route-access?path=/auth/login", nil), &domain.Session{SessionID: "s1"})
	h.RouteAccess(rr, req)
	assert.Equal(t, guard.Decision{RedirectTo: guard.PathDashboard}, decode[guard.Decision](t, rr))

	rr = httptest.NewRecorder()
	h.RouteAccess(rr, httptest.NewRequest(http.MethodGet, "/v1/route-access", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthPing(t *testing.T) {
	h := NewHealthHandler(nil)

	rr := httptest.NewRecorder()
	h.Ping(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decode[MessageEnvelope](t, rr).Message)

	rr = httptest.NewRecorder()
	h.Ping(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/other", nil), "action", "other"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthReady(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(fakePinger{}).Ping(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ready", nil), "action", "ready"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decode[MessageEnvelope](t, rr).Message)

	rr = httptest.NewRecorder()
	NewHealthHandler(fakePinger{err: assert.AnError}).Ping(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ready", nil), "action", "ready"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
