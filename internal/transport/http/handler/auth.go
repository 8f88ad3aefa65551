package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/pkg/validate"
	"github.com/go-signup-gate/internal/transport/http/middleware"
)

// PathAuthError is where a failed confirmation link lands.
const PathAuthError = "/auth/error"

const msgInvalidLink = "Invalid confirmation link"

// AuthHandler handles login, logout and emailed confirmation links.
type AuthHandler struct {
	svc     identity.Service
	cookies Cookies
}

func NewAuthHandler(svc identity.Service, cookies Cookies) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		httpError(w, err)
		return
	}

	signed, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.SetSession(w, signed.Token)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Bearer:  signed.Token,
		Session: signed.Session,
		Next:    guard.PathDashboard,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := h.svc.SignOut(r.Context(), sess.SessionID); err != nil {
			httpError(w, err)
			return
		}
	}
	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Signed out", Next: guard.PathLogin})
}

// Confirm verifies the code carried by an emailed link and redirects to next.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := strings.TrimSpace(q.Get("email"))
	code := strings.TrimSpace(q.Get("token"))
	next := safeNext(q.Get("next"))

	if email == "" || !validate.OTPCode(code) {
		redirectAuthError(w, r, msgInvalidLink)
		return
	}
	signed, err := h.svc.VerifyOtp(r.Context(), email, code)
	if err != nil {
		slog.Info("confirm link rejected", "email", email, "err", err)
		redirectAuthError(w, r, confirmFailure(err))
		return
	}
	h.cookies.SetSession(w, signed.Token)
	http.Redirect(w, r, next, http.StatusFound)
}

// confirmFailure is the text shown on the error page. Only the provider's
// user-facing messages reach the query string.
func confirmFailure(err error) string {
	var ie *identity.Error
	if errors.As(err, &ie) && ie.Message != "" {
		return ie.Message
	}
	return msgInvalidLink
}

// safeNext keeps redirects on this origin.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return guard.PathDashboard
	}
	return next
}

func redirectAuthError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, PathAuthError+"?error="+url.QueryEscape(msg), http.StatusFound)
}
