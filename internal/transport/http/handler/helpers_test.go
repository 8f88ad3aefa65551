package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/transport/http/middleware"
	"github.com/stretchr/testify/require"
)

var testCookies = Cookies{SessionTTL: time.Hour, AttemptTTL: time.Hour}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, sess *domain.Session) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.SessionKey, sess)
	return req.WithContext(ctx)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
