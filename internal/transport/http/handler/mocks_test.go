package handler

import (
	"context"

	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/application/signup"
	"github.com/go-signup-gate/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockSignupSvc struct{ mock.Mock }

func (m *mockSignupSvc) result(args mock.Arguments) (*signup.Result, error) {
	if r, _ := args.Get(0).(*signup.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSignupSvc) StartSignup(ctx context.Context, req domain.SignupRequest) (*signup.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockSignupSvc) StartPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (*signup.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockSignupSvc) SubmitOtp(ctx context.Context, sub domain.OtpSubmission) (*signup.Result, error) {
	return m.result(m.Called(ctx, sub))
}

func (m *mockSignupSvc) ResendOtp(ctx context.Context, req domain.ResendRequest) (*signup.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockSignupSvc) SetNewPassword(ctx context.Context, sess *domain.Session, req domain.NewPasswordRequest) (*signup.Result, error) {
	return m.result(m.Called(ctx, sess, req))
}

func (m *mockSignupSvc) Wait() {}

type mockIdentitySvc struct{ mock.Mock }

func (m *mockIdentitySvc) signed(args mock.Arguments) (*identity.SignedSession, error) {
	if s, _ := args.Get(0).(*identity.SignedSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentitySvc) CreateAccount(ctx context.Context, email, password string, meta domain.AccountMetadata) (string, error) {
	args := m.Called(ctx, email, password, meta)
	return args.String(0), args.Error(1)
}

func (m *mockIdentitySvc) SendOtp(ctx context.Context, email string, isPasswordReset bool) error {
	return m.Called(ctx, email, isPasswordReset).Error(0)
}

func (m *mockIdentitySvc) VerifyOtp(ctx context.Context, email, code string) (*identity.SignedSession, error) {
	return m.signed(m.Called(ctx, email, code))
}

func (m *mockIdentitySvc) SignIn(ctx context.Context, email, password string) (*identity.SignedSession, error) {
	return m.signed(m.Called(ctx, email, password))
}

func (m *mockIdentitySvc) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentitySvc) SignOut(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockIdentitySvc) UpdatePassword(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}
