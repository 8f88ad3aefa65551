package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Signup and OTP workflow failures. Each one is returned inside a *FlowError.
var (
	ErrValidation              = errors.New("validation failed")
	ErrVerificationUnavailable = errors.New("email verification unavailable")
	ErrEmailRejected           = errors.New("email rejected")
	ErrAccountCreation         = errors.New("account creation failed")
	ErrOtpDispatch             = errors.New("otp dispatch failed")
	ErrOtpRejected             = errors.New("otp rejected")
	ErrSessionMissing          = errors.New("session missing")
)

// FlowError is what the signup workflow hands back to its caller. Message is
// safe to show to the user as-is and State is where the caller can resubmit from.
type FlowError struct {
	Kind    error
	Message string
	State   SignupState
	// Fields holds per-field messages for ErrValidation.
	Fields map[string]string
}

func (e *FlowError) Error() string { return e.Message }

func (e *FlowError) Unwrap() error { return e.Kind }

// NewFlowError builds a FlowError of the given kind.
func NewFlowError(kind error, state SignupState, msg string) *FlowError {
	return &FlowError{Kind: kind, Message: msg, State: state}
}
