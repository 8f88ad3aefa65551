// Package guard decides which pages a visitor may see given whether they
// hold a session.
package guard

import "strings"

const (
	PathDashboard       = "/dashboard"
	PathUnauthenticated = "/unauthenticated"
	PathNewPassword     = "/auth/new-password"
	PathResetPassword   = "/auth/reset-password"
	PathLogin           = "/auth/login"
	PathSignup          = "/auth/signup"
)

// protectedPrefixes need a session.
var protectedPrefixes = []string{PathDashboard}

// authOnly pages are pointless once signed in.
var authOnly = map[string]bool{
	PathLogin:         true,
	PathSignup:        true,
	PathResetPassword: true,
}

// Decision is Allow or a redirect target.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{RedirectTo: to} }

// Check applies the routing rules in order; the first match wins.
func Check(sessionPresent bool, path string) Decision {
	path = normalize(path)
	switch {
	case !sessionPresent && isProtected(path):
		return redirect(PathUnauthenticated)
	case sessionPresent && authOnly[path] && path != PathNewPassword:
		return redirect(PathDashboard)
	case sessionPresent && path == PathUnauthenticated:
		return redirect(PathDashboard)
	}
	return allow()
}

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// normalize drops a trailing slash so "/dashboard/" matches "/dashboard".
func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
