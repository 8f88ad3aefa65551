package http

import (
	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/application/signup"
	"github.com/go-signup-gate/internal/transport/http/handler"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Signup   signup.Service
	Identity identity.Service
	// Store backs the readiness check; nil skips it.
	Store handler.Pinger
}
