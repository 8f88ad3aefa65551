package handler

import (
	"net/http"
	"time"

	"github.com/go-signup-gate/internal/transport/http/middleware"
)

// AttemptCookie carries the signup attempt token between the form and OTP pages.
const AttemptCookie = "signup_attempt"

// Cookies writes the session and attempt cookies.
type Cookies struct {
	Secure     bool
	SessionTTL time.Duration
	AttemptTTL time.Duration
}

func (c Cookies) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) SetSession(w http.ResponseWriter, token string) {
	c.set(w, middleware.SessionCookie, token, c.SessionTTL)
}

func (c Cookies) ClearSession(w http.ResponseWriter) { c.clear(w, middleware.SessionCookie) }

func (c Cookies) SetAttempt(w http.ResponseWriter, token string) {
	c.set(w, AttemptCookie, token, c.AttemptTTL)
}

func (c Cookies) ClearAttempt(w http.ResponseWriter) { c.clear(w, AttemptCookie) }

// attemptToken prefers the token in the body and falls back to the cookie.
func attemptToken(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if ck, err := r.Cookie(AttemptCookie); err == nil {
		return ck.Value
	}
	return ""
}
