package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/application/signup"
	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignup_InvalidBody(t *testing.T) {
	h := NewSignupHandler(&mockSignupSvc{}, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_Success_SetsAttemptCookie(t *testing.T) {
	svc := &mockSignupSvc{}
	body := domain.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "Secret123", ConfirmPassword: "Secret123"}
	svc.On("StartSignup", mock.Anything, body).Return(&signup.Result{
		State:        domain.StateAwaitingOtp,
		Attempt:      domain.SignupAttempt{Email: "ana@example.com"},
		AttemptToken: "attempt-tok",
	}, nil)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.Signup(rr, jsonRequest(t, http.MethodPost, "/v1/auth/signup", body))

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode[FlowEnvelope](t, rr)
	assert.Equal(t, domain.StateAwaitingOtp, env.State)
	assert.Equal(t, "ana@example.com", env.Email)
	assert.Equal(t, "attempt-tok", env.AttemptToken)

	c := findCookie(rr, AttemptCookie)
	require.NotNil(t, c)
	assert.Equal(t, "attempt-tok", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestSignup_FlowErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		kind   error
		status int
	}{
		{"validation", domain.ErrValidation, http.StatusUnprocessableEntity},
		{"rejected", domain.ErrEmailRejected, http.StatusUnprocessableEntity},
		{"unavailable", domain.ErrVerificationUnavailable, http.StatusServiceUnavailable},
		{"account creation", domain.ErrAccountCreation, http.StatusConflict},
		{"dispatch", domain.ErrOtpDispatch, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSignupSvc{}
			fe := domain.NewFlowError(tt.kind, domain.StateFormEntered, "msg for "+tt.name)
			svc.On("StartSignup", mock.Anything, mock.Anything).Return(nil, fe)
			h := NewSignupHandler(svc, testCookies)

			rr := httptest.NewRecorder()
			h.Signup(rr, jsonRequest(t, http.MethodPost, "/v1/auth/signup", domain.SignupRequest{}))

			assert.Equal(t, tt.status, rr.Code)
			env := decode[FlowEnvelope](t, rr)
			assert.Equal(t, domain.StateFormEntered, env.State)
			assert.Equal(t, "msg for "+tt.name, env.Error)
			assert.Nil(t, findCookie(rr, AttemptCookie))
		})
	}
}

func TestSignup_RejectedCarriesFieldMessage(t *testing.T) {
	svc := &mockSignupSvc{}
	fe := domain.NewFlowError(domain.ErrEmailRejected, domain.StateFormEntered, "Email rejected: "+domain.ReasonDisposable)
	fe.Fields = map[string]string{"email": domain.ReasonDisposable}
	svc.On("StartSignup", mock.Anything, mock.Anything).Return(nil, fe)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.Signup(rr, jsonRequest(t, http.MethodPost, "/v1/auth/signup", domain.SignupRequest{}))

	env := decode[FlowEnvelope](t, rr)
	assert.Equal(t, "Email rejected: disposable addresses not allowed", env.Error)
	assert.Equal(t, domain.ReasonDisposable, env.Fields["email"])
}

func TestResetPassword_Success(t *testing.T) {
	svc := &mockSignupSvc{}
	svc.On("StartPasswordReset", mock.Anything, domain.PasswordResetRequest{Email: "ana@example.com"}).Return(&signup.Result{
		State:        domain.StateAwaitingOtp,
		Attempt:      domain.SignupAttempt{Email: "ana@example.com", IsPasswordResetFlow: true},
		AttemptToken: "reset-tok",
	}, nil)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.ResetPassword(rr, jsonRequest(t, http.MethodPost, "/v1/auth/reset-password", domain.PasswordResetRequest{Email: "ana@example.com"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "reset-tok", decode[FlowEnvelope](t, rr).AttemptToken)
}

func TestVerifyOtp_UsesAttemptCookie(t *testing.T) {
	svc := &mockSignupSvc{}
	sess := &domain.Session{SessionID: "s1", UserID: "u1"}
	svc.On("SubmitOtp", mock.Anything, domain.OtpSubmission{Code: "123456", AttemptToken: "from-cookie"}).Return(&signup.Result{
		State:   domain.StateVerified,
		Next:    guard.PathDashboard,
		Session: &identity.SignedSession{Token: "session-tok", Session: sess},
	}, nil)
	h := NewSignupHandler(svc, testCookies)

	req := jsonRequest(t, http.MethodPost, "/v1/auth/verify-otp", domain.OtpSubmission{Code: "123456"})
	req.AddCookie(&http.Cookie{Name: AttemptCookie, Value: "from-cookie"})
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode[AuthEnvelope](t, rr)
	assert.Equal(t, "session-tok", env.Bearer)
	assert.Equal(t, guard.PathDashboard, env.Next)

	sc := findCookie(rr, middleware.SessionCookie)
	require.NotNil(t, sc)
	assert.Equal(t, "session-tok", sc.Value)
	ac := findCookie(rr, AttemptCookie)
	require.NotNil(t, ac)
	assert.Equal(t, -1, ac.MaxAge)
}

func TestVerifyOtp_BodyTokenWinsOverCookie(t *testing.T) {
	svc := &mockSignupSvc{}
	svc.On("SubmitOtp", mock.Anything, domain.OtpSubmission{Code: "123456", AttemptToken: "from-body"}).
		Return(nil, domain.NewFlowError(domain.ErrOtpRejected, domain.StateAwaitingOtp, "Token has expired or is invalid"))
	h := NewSignupHandler(svc, testCookies)

	req := jsonRequest(t, http.MethodPost, "/v1/auth/verify-otp", domain.OtpSubmission{Code: "123456", AttemptToken: "from-body"})
	req.AddCookie(&http.Cookie{Name: AttemptCookie, Value: "from-cookie"})
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decode[FlowEnvelope](t, rr)
	assert.Equal(t, domain.StateAwaitingOtp, env.State)
	assert.Equal(t, "Token has expired or is invalid", env.Error)
	assert.Nil(t, findCookie(rr, middleware.SessionCookie))
	svc.AssertExpectations(t)
}

func TestResendOtp_ReturnsMessage(t *testing.T) {
	svc := &mockSignupSvc{}
	svc.On("ResendOtp", mock.Anything, domain.ResendRequest{AttemptToken: "tok"}).Return(&signup.Result{
		State:        domain.StateAwaitingOtp,
		Attempt:      domain.SignupAttempt{Email: "ana@example.com"},
		AttemptToken: "tok-2",
		Message:      "A new verification code has been sent to your email.",
	}, nil)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.ResendOtp(rr, jsonRequest(t, http.MethodPost, "/v1/auth/resend-otp", domain.ResendRequest{AttemptToken: "tok"}))

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode[FlowEnvelope](t, rr)
	assert.Equal(t, "A new verification code has been sent to your email.", env.Message)
	assert.Equal(t, "tok-2", findCookie(rr, AttemptCookie).Value)
}

func TestNewPassword_NoSession(t *testing.T) {
	svc := &mockSignupSvc{}
	var nilSession *domain.Session
	svc.On("SetNewPassword", mock.Anything, nilSession, mock.Anything).
		Return(nil, domain.NewFlowError(domain.ErrSessionMissing, domain.StateFormEntered, "Your session has expired. Please request a new password reset."))
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.NewPassword(rr, jsonRequest(t, http.MethodPost, "/v1/auth/new-password", domain.NewPasswordRequest{}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, guard.PathResetPassword, decode[FlowEnvelope](t, rr).Next)
}

func TestNewPassword_Success_ClearsSession(t *testing.T) {
	svc := &mockSignupSvc{}
	sess := &domain.Session{SessionID: "s1", UserID: "u1", User: &domain.User{UserID: "u1", Email: "ana@example.com"}}
	body := domain.NewPasswordRequest{Password: "NewSecret1", ConfirmPassword: "NewSecret1"}
	svc.On("SetNewPassword", mock.Anything, sess, body).Return(&signup.Result{State: domain.StateVerified, Next: guard.PathLogin}, nil)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.NewPassword(rr, withSession(jsonRequest(t, http.MethodPost, "/v1/auth/new-password", body), sess))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, guard.PathLogin, decode[FlowEnvelope](t, rr).Next)
	c := findCookie(rr, middleware.SessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestNewPassword_UpdateFailureIs500(t *testing.T) {
	svc := &mockSignupSvc{}
	sess := &domain.Session{SessionID: "s1", UserID: "u1", User: &domain.User{UserID: "u1"}}
	svc.On("SetNewPassword", mock.Anything, sess, mock.Anything).Return(nil, assert.AnError)
	h := NewSignupHandler(svc, testCookies)

	rr := httptest.NewRecorder()
	h.NewPassword(rr, withSession(jsonRequest(t, http.MethodPost, "/v1/auth/new-password", domain.NewPasswordRequest{}), sess))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decode[MessageEnvelope](t, rr).Error)
}
