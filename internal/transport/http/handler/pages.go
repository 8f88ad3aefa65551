package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/transport/http/middleware"
)

// authPages are the pages served under /auth/{page}.
var authPages = map[string]bool{
	"login":          true,
	"signup":         true,
	"reset-password": true,
	"verify":         true,
	"error":          true,
}

// PageHandler describes the pages a browser client renders. Redirects are
// applied by the guard middleware before these run.
type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	env := PageEnvelope{Page: "dashboard"}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		env.User = sess.User
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *PageHandler) Auth(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	if !authPages[page] {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Page: page})
}

// NewPassword is only reachable with a session; the router redirects everyone else.
func (h *PageHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PageEnvelope{Page: "new-password"})
}

func (h *PageHandler) Unauthenticated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PageEnvelope{Page: "unauthenticated"})
}

// RouteAccess answers whether the caller may see ?path= and where to go if not.
func (h *PageHandler) RouteAccess(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	_, ok := middleware.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, guard.Check(ok, path))
}
