package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/pkg/validate"
)

// flowStatus maps a workflow failure kind to its HTTP status.
func flowStatus(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrValidation), errors.Is(kind, domain.ErrEmailRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(kind, domain.ErrVerificationUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(kind, domain.ErrAccountCreation):
		return http.StatusConflict
	case errors.Is(kind, domain.ErrOtpDispatch):
		return http.StatusBadGateway
	case errors.Is(kind, domain.ErrOtpRejected), errors.Is(kind, domain.ErrSessionMissing):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// httpError writes err as JSON. Workflow failures keep their state and field
// messages; sentinel errors map to their usual statuses; anything else is a 500
// whose detail stays in the log.
func httpError(w http.ResponseWriter, err error) {
	var fe *domain.FlowError
	if errors.As(err, &fe) {
		env := FlowEnvelope{State: fe.State, Error: fe.Message, Fields: fe.Fields}
		if errors.Is(fe.Kind, domain.ErrSessionMissing) {
			env.Next = guard.PathResetPassword
		}
		writeJSON(w, flowStatus(fe.Kind), env)
		return
	}
	var ve validate.Errors
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, FlowEnvelope{State: domain.StateFormEntered, Error: "Please check the form for errors", Fields: ve})
		return
	}
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
