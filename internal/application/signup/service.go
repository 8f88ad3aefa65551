package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/domain"
	"github.com/go-signup-gate/internal/observability"
	"github.com/go-signup-gate/internal/pkg/validate"
)

// User-facing messages.
const (
	msgFixFields           = "Please check the form for errors"
	msgVerifierUnavailable = "We could not verify your email address right now. Please try again."
	msgAccountGeneric      = "An unknown error occurred"
	msgOtpDispatch         = "Failed to send verification email"
	msgResendFailed        = "Failed to resend OTP. Please try again."
	msgResent              = "A new verification code has been sent to your email."
	msgEmailRequired       = "Email is required. Please try again."
	msgEmailMismatch       = "This email does not match the pending verification. Please start again."
	msgAttemptInvalid      = "Your verification session has expired. Please start again."
	msgCodeRequired        = "Please enter the verification code."
	msgCodeFormat          = "Verification code must be 6 digits."
	msgOtpGeneric          = "An error occurred during verification, please try again."
	msgSessionMissing      = "Your session has expired. Please request a new password reset."
)

// Verifier decides whether an email may be used.
type Verifier interface {
	Check(ctx context.Context, email string) (domain.Decision, error)
}

// Identity is the part of the identity provider the workflow drives.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string, meta domain.AccountMetadata) (string, error)
	SendOtp(ctx context.Context, email string, isPasswordReset bool) error
	VerifyOtp(ctx context.Context, email, code string) (*identity.SignedSession, error)
	UpdatePassword(ctx context.Context, userID, password string) error
	SignOut(ctx context.Context, sessionID string) error
}

type Mailer interface {
	Send(ctx context.Context, tmpl domain.EmailTemplate, to string, p domain.EmailPayload) error
}

// AttemptCodec seals a SignupAttempt into an opaque token and back.
type AttemptCodec interface {
	SignAttempt(a domain.SignupAttempt) (string, error)
	OpenAttempt(token string) (domain.SignupAttempt, error)
}

// Result is the success payload of every workflow step.
type Result struct {
	State        domain.SignupState
	Attempt      domain.SignupAttempt
	AttemptToken string
	// Next is the page the caller should move to, if any.
	Next    string
	Message string
	Session *identity.SignedSession
}

// Service runs the signup, password-reset and OTP steps. Workflow failures
// are returned as *domain.FlowError; anything else is an infrastructure error.
type Service interface {
	StartSignup(ctx context.Context, req domain.SignupRequest) (*Result, error)
	StartPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (*Result, error)
	SubmitOtp(ctx context.Context, sub domain.OtpSubmission) (*Result, error)
	ResendOtp(ctx context.Context, req domain.ResendRequest) (*Result, error)
	SetNewPassword(ctx context.Context, sess *domain.Session, req domain.NewPasswordRequest) (*Result, error)
	// Wait blocks until every background email has finished.
	Wait()
}

type ServiceDeps struct {
	Verifier Verifier
	Identity Identity
	Mailer   Mailer
	Attempts AttemptCodec
	// SiteURL prefixes links in notification emails.
	SiteURL string
	// CallTimeout bounds each identity provider and mailer call.
	CallTimeout time.Duration
}

type service struct {
	verifier    Verifier
	identity    Identity
	mailer      Mailer
	attempts    AttemptCodec
	siteURL     string
	callTimeout time.Duration
	background  sync.WaitGroup
}

func NewService(deps ServiceDeps) Service {
	timeout := deps.CallTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &service{
		verifier:    deps.Verifier,
		identity:    deps.Identity,
		mailer:      deps.Mailer,
		attempts:    deps.Attempts,
		siteURL:     strings.TrimRight(deps.SiteURL, "/"),
		callTimeout: timeout,
	}
}

func (s *service) StartSignup(ctx context.Context, req domain.SignupRequest) (*Result, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, domain.StateFormEntered)
	}
	step(req.Email, domain.StateEmailVerifying)

	decision, err := s.verifier.Check(ctx, req.Email)
	if err != nil {
		slog.Warn("email verification unavailable", "email", req.Email, "err", err)
		return nil, domain.NewFlowError(domain.ErrVerificationUnavailable, domain.StateFormEntered, msgVerifierUnavailable)
	}
	if !decision.Accepted {
		step(req.Email, domain.StateEmailRejected)
		fe := domain.NewFlowError(domain.ErrEmailRejected, domain.StateFormEntered, "Email rejected: "+decision.Reason)
		fe.Fields = map[string]string{"email": decision.Reason}
		return nil, fe
	}
	step(req.Email, domain.StateEmailAccepted)

	step(req.Email, domain.StateAccountCreating)
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	_, err = s.identity.CreateAccount(callCtx, req.Email, req.Password, domain.AccountMetadata{Name: req.Name})
	cancel()
	if err != nil {
		slog.Warn("account creation failed", "email", req.Email, "err", err)
		return nil, domain.NewFlowError(domain.ErrAccountCreation, domain.StateFormEntered, providerMessage(err, msgAccountGeneric))
	}

	step(req.Email, domain.StateOtpSending)
	if err := s.sendOtp(ctx, req.Email, false); err != nil {
		slog.Error("verification email failed", "email", req.Email, "err", err)
		return nil, domain.NewFlowError(domain.ErrOtpDispatch, domain.StateFormEntered, msgOtpDispatch)
	}

	return s.awaitOtp(domain.SignupAttempt{
		Email:           req.Email,
		PendingPassword: req.Password,
	})
}

// StartPasswordReset skips deliverability gating and account creation.
func (s *service) StartPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (*Result, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, domain.StateFormEntered)
	}

	step(req.Email, domain.StateOtpSending)
	if err := s.sendOtp(ctx, req.Email, true); err != nil {
		slog.Error("password reset email failed", "email", req.Email, "err", err)
		return nil, domain.NewFlowError(domain.ErrOtpDispatch, domain.StateFormEntered, msgOtpDispatch)
	}

	return s.awaitOtp(domain.SignupAttempt{
		Email:               req.Email,
		IsPasswordResetFlow: true,
	})
}

func (s *service) SubmitOtp(ctx context.Context, sub domain.OtpSubmission) (*Result, error) {
	attempt, email, ferr := s.resolveAttempt(sub.Email, sub.AttemptToken)
	if ferr != nil {
		return nil, ferr
	}

	code := strings.TrimSpace(sub.Code)
	if code == "" {
		return nil, fieldError(domain.StateAwaitingOtp, "code", msgCodeRequired)
	}
	if !validate.OTPCode(code) {
		return nil, fieldError(domain.StateAwaitingOtp, "code", msgCodeFormat)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	session, err := s.identity.VerifyOtp(callCtx, email, code)
	cancel()
	if err != nil {
		slog.Info("otp rejected", "email", email, "err", err)
		return nil, domain.NewFlowError(domain.ErrOtpRejected, domain.StateAwaitingOtp, providerMessage(err, msgOtpGeneric))
	}

	res := &Result{
		State:   domain.StateVerified,
		Attempt: domain.SignupAttempt{Email: email, IsPasswordResetFlow: attempt.IsPasswordResetFlow},
		Session: session,
	}
	if attempt.IsPasswordResetFlow {
		res.Next = guard.PathNewPassword
		return res, nil
	}

	s.sendInBackground(ctx, domain.TemplateWelcome, email, domain.EmailPayload{LinkURL: s.siteURL + guard.PathDashboard})
	res.Next = guard.PathDashboard
	return res, nil
}

// ResendOtp sends a fresh code for the same attempt. It never re-checks
// deliverability or creates an account.
func (s *service) ResendOtp(ctx context.Context, req domain.ResendRequest) (*Result, error) {
	attempt, email, ferr := s.resolveAttempt(req.Email, req.AttemptToken)
	if ferr != nil {
		return nil, ferr
	}

	if err := s.sendOtp(ctx, email, attempt.IsPasswordResetFlow); err != nil {
		slog.Error("resend otp failed", "email", email, "err", err)
		return nil, domain.NewFlowError(domain.ErrOtpDispatch, domain.StateAwaitingOtp, msgResendFailed)
	}

	res, err := s.awaitOtp(domain.SignupAttempt{Email: email, IsPasswordResetFlow: attempt.IsPasswordResetFlow})
	if err != nil {
		return nil, err
	}
	res.Message = msgResent
	return res, nil
}

// SetNewPassword finishes a password reset. The session that authorized the
// change is signed out afterwards.
func (s *service) SetNewPassword(ctx context.Context, sess *domain.Session, req domain.NewPasswordRequest) (*Result, error) {
	if sess == nil || sess.User == nil {
		return nil, domain.NewFlowError(domain.ErrSessionMissing, domain.StateFormEntered, msgSessionMissing)
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, domain.StateFormEntered)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	err := s.identity.UpdatePassword(callCtx, sess.UserID, req.Password)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.sendInBackground(ctx, domain.TemplatePasswordResetConfirmation, sess.User.Email,
		domain.EmailPayload{LinkURL: s.siteURL + guard.PathLogin})

	callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
	if err := s.identity.SignOut(callCtx, sess.SessionID); err != nil {
		slog.Warn("sign out after password reset failed", "session_id", sess.SessionID, "err", err)
	}
	cancel()

	return &Result{State: domain.StateVerified, Next: guard.PathLogin}, nil
}

func (s *service) Wait() {
	s.background.Wait()
}

func (s *service) sendOtp(ctx context.Context, email string, isPasswordReset bool) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.identity.SendOtp(callCtx, email, isPasswordReset)
}

func (s *service) awaitOtp(a domain.SignupAttempt) (*Result, error) {
	tok, err := s.attempts.SignAttempt(a)
	if err != nil {
		slog.Error("sign attempt token failed", "email", a.Email, "err", err)
		return nil, domain.NewFlowError(domain.ErrOtpDispatch, domain.StateFormEntered, msgOtpDispatch)
	}
	step(a.Email, domain.StateAwaitingOtp)
	return &Result{State: domain.StateAwaitingOtp, Attempt: a, AttemptToken: tok}, nil
}

// resolveAttempt opens the attempt token, if any, and settles which email the
// OTP step is about. A supplied email wins only when it agrees with the token.
func (s *service) resolveAttempt(email, token string) (domain.SignupAttempt, string, *domain.FlowError) {
	var attempt domain.SignupAttempt
	if token != "" {
		a, err := s.attempts.OpenAttempt(token)
		if err != nil {
			return attempt, "", domain.NewFlowError(domain.ErrValidation, domain.StateFormEntered, msgAttemptInvalid)
		}
		attempt = a
	}

	email = strings.TrimSpace(email)
	if email == "" {
		email = attempt.Email
	}
	if email == "" {
		return attempt, "", fieldError(domain.StateAwaitingOtp, "email", msgEmailRequired)
	}
	if attempt.Email != "" && email != attempt.Email {
		return attempt, "", fieldError(domain.StateAwaitingOtp, "email", msgEmailMismatch)
	}
	return attempt, email, nil
}

// sendInBackground mails tmpl without holding up the caller. Failures are
// logged and counted, never returned.
func (s *service) sendInBackground(ctx context.Context, tmpl domain.EmailTemplate, to string, p domain.EmailPayload) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, tmpl, to, p); err != nil {
			observability.RecordBackgroundEmailFailure(string(tmpl))
			slog.Warn("background email failed", "template", tmpl, "email", to, "err", err)
		}
	}()
}

func step(email string, state domain.SignupState) {
	slog.Debug("signup step", "email", email, "state", state)
}

func validationError(err error, state domain.SignupState) *domain.FlowError {
	fe := domain.NewFlowError(domain.ErrValidation, state, msgFixFields)
	var ve validate.Errors
	if errors.As(err, &ve) {
		fe.Fields = ve
	}
	return fe
}

func fieldError(state domain.SignupState, field, msg string) *domain.FlowError {
	fe := domain.NewFlowError(domain.ErrValidation, state, msg)
	fe.Fields = map[string]string{field: msg}
	return fe
}

// providerMessage returns the identity provider's own wording when it has one.
func providerMessage(err error, fallback string) string {
	var ie *identity.Error
	if errors.As(err, &ie) {
		return ie.Message
	}
	return fallback
}
