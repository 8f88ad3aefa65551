package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-signup-gate/internal/application/signup"
	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/transport/http/middleware"
)

// SignupHandler exposes the signup, password-reset and OTP steps.
type SignupHandler struct {
	svc     signup.Service
	cookies Cookies
}

func NewSignupHandler(svc signup.Service, cookies Cookies) *SignupHandler {
	return &SignupHandler{svc: svc, cookies: cookies}
}

func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.StartSignup(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.awaiting(w, res)
}

func (h *SignupHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.StartPasswordReset(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.awaiting(w, res)
}

func (h *SignupHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var sub domain.OtpSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub.AttemptToken = attemptToken(r, sub.AttemptToken)

	res, err := h.svc.SubmitOtp(r.Context(), sub)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.ClearAttempt(w)
	env := AuthEnvelope{Next: res.Next}
	if res.Session != nil {
		h.cookies.SetSession(w, res.Session.Token)
		env.Bearer = res.Session.Token
		env.Session = res.Session.Session
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *SignupHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AttemptToken = attemptToken(r, req.AttemptToken)

	res, err := h.svc.ResendOtp(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.awaiting(w, res)
}

// NewPassword finishes a password reset for the session opened by the OTP step.
func (h *SignupHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.NewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, _ := middleware.SessionFromContext(r.Context())

	res, err := h.svc.SetNewPassword(r.Context(), sess, req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, FlowEnvelope{
		State:   res.State,
		Next:    res.Next,
		Message: "Password updated successfully",
	})
}

func (h *SignupHandler) awaiting(w http.ResponseWriter, res *signup.Result) {
	h.cookies.SetAttempt(w, res.AttemptToken)
	writeJSON(w, http.StatusOK, FlowEnvelope{
		State:        res.State,
		Email:        res.Attempt.Email,
		AttemptToken: res.AttemptToken,
		Next:         res.Next,
		Message:      res.Message,
	})
}
