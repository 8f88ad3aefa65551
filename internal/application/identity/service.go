package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-signup-gate/internal/domain"
	jwtinfra "github.com/go-signup-gate/internal/infrastructure/jwt"
	"github.com/go-signup-gate/internal/pkg/id"
	pkgtoken "github.com/go-signup-gate/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Messages shown to users as-is by the signup workflow.
const (
	msgAlreadyRegistered  = "User already registered"
	msgInvalidOtp         = "Token has expired or is invalid"
	msgInvalidCredentials = "Invalid login credentials"
	msgEmailNotConfirmed  = "Email not confirmed"
)

// maxOtpAttempts is how many wrong guesses burn a code.
const maxOtpAttempts = 5

// Error is a provider failure whose Message is meant for the end user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetPassword(ctx context.Context, userID, hash string) error
	ReplacePending(ctx context.Context, userID, name, hash string) error
	MarkConfirmed(ctx context.Context, userID string, at time.Time) error
}

type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type OTPStore interface {
	Put(ctx context.Context, c *domain.OTPCode) error
	Get(ctx context.Context, userID, otpType string) (*domain.OTPCode, error)
	Delete(ctx context.Context, userID, otpType string) error
	// RecordFailure counts one wrong guess and returns the new total.
	RecordFailure(ctx context.Context, userID, otpType string) (int, error)
}

type Mailer interface {
	Send(ctx context.Context, tmpl domain.EmailTemplate, to string, p domain.EmailPayload) error
}

type TokenProvider interface {
	Sign(userID, email, sessionID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// SignedSession is a stored session plus the bearer token that names it.
type SignedSession struct {
	Token   string
	Session *domain.Session
}

// Service owns accounts, one-time codes and sessions.
type Service interface {
	CreateAccount(ctx context.Context, email, password string, meta domain.AccountMetadata) (string, error)
	SendOtp(ctx context.Context, email string, isPasswordReset bool) error
	VerifyOtp(ctx context.Context, email, code string) (*SignedSession, error)
	SignIn(ctx context.Context, email, password string) (*SignedSession, error)
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	UpdatePassword(ctx context.Context, userID, password string) error
}

type ServiceDeps struct {
	UserRepo    UserStore
	SessionRepo SessionStore
	OTPRepo     OTPStore
	Mailer      Mailer
	JWTProvider TokenProvider
	OTPExpiry   time.Duration
	SessionTTL  time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

type service struct {
	userRepo    UserStore
	sessionRepo SessionStore
	otpRepo     OTPStore
	mailer      Mailer
	jwtProvider TokenProvider
	otpExpiry   time.Duration
	sessionTTL  time.Duration
	bcryptCost  int
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		userRepo:    deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		otpRepo:     deps.OTPRepo,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
		otpExpiry:   deps.OTPExpiry,
		sessionTTL:  deps.SessionTTL,
		bcryptCost:  deps.BcryptCost,
		now:         deps.Now,
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateAccount registers email. An account that never confirmed its email
// is taken over by the new submission; a confirmed one is a conflict.
func (s *service) CreateAccount(ctx context.Context, email, password string, meta domain.AccountMetadata) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.EmailConfirmed:
		return "", newError(domain.ErrConflict, msgAlreadyRegistered)
	case err == nil:
		if err := s.userRepo.ReplacePending(ctx, existing.UserID, meta.Name, string(hash)); err != nil {
			return "", err
		}
		return existing.UserID, nil
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		Name:         meta.Name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return "", err
	}
	return u.UserID, nil
}

// SendOtp issues a new code for email and mails it. A password reset for an
// unknown email succeeds without sending anything.
func (s *service) SendOtp(ctx context.Context, email string, isPasswordReset bool) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && isPasswordReset {
			return nil
		}
		return err
	}

	code, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if err := s.otpRepo.Put(ctx, &domain.OTPCode{
		UserID:    u.UserID,
		Type:      domain.OTPTypeEmail,
		Code:      code,
		ExpiresAt: now.Add(s.otpExpiry).Unix(),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	return s.mailer.Send(ctx, domain.TemplateVerification, u.Email, domain.EmailPayload{
		OTP:             code,
		IsPasswordReset: isPasswordReset,
	})
}

// VerifyOtp consumes the outstanding code for email and opens a session.
func (s *service) VerifyOtp(ctx context.Context, email, code string) (*SignedSession, error) {
	invalid := newError(domain.ErrUnauthorized, msgInvalidOtp)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	otp, err := s.otpRepo.Get(ctx, u.UserID, domain.OTPTypeEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	now := s.now().UTC()
	if now.Unix() >= otp.ExpiresAt {
		return nil, invalid
	}
	if otp.Attempts >= maxOtpAttempts {
		s.burnOtp(ctx, u.UserID)
		return nil, invalid
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		n, err := s.otpRepo.RecordFailure(ctx, u.UserID, domain.OTPTypeEmail)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// consumed or replaced in the meantime
		case err != nil:
			return nil, err
		case n >= maxOtpAttempts:
			s.burnOtp(ctx, u.UserID)
		}
		return nil, invalid
	}

	if err := s.otpRepo.Delete(ctx, u.UserID, domain.OTPTypeEmail); err != nil {
		return nil, err
	}
	if !u.EmailConfirmed {
		if err := s.userRepo.MarkConfirmed(ctx, u.UserID, now); err != nil {
			return nil, err
		}
		u.EmailConfirmed = true
		u.ConfirmedAt = &now
	}
	return s.openSession(ctx, u)
}

func (s *service) SignIn(ctx context.Context, email, password string) (*SignedSession, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, newError(domain.ErrUnauthorized, msgInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, newError(domain.ErrUnauthorized, msgInvalidCredentials)
	}
	if !u.EmailConfirmed {
		return nil, newError(domain.ErrForbidden, msgEmailNotConfirmed)
	}
	return s.openSession(ctx, u)
}

// GetSession resolves a bearer token to a live session with its user attached.
func (s *service) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.jwtProvider.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	sess, err := s.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session not found: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !sess.Enable || s.now().Unix() >= sess.ExpiresAt {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) SignOut(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) UpdatePassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.SetPassword(ctx, userID, string(hash))
}

// burnOtp drops a code that has taken too many wrong guesses. A new one has
// to be requested.
func (s *service) burnOtp(ctx context.Context, userID string) {
	slog.Warn("otp attempts exhausted", "user_id", userID)
	if err := s.otpRepo.Delete(ctx, userID, domain.OTPTypeEmail); err != nil {
		slog.Warn("delete exhausted otp failed", "user_id", userID, "err", err)
	}
}

func (s *service) openSession(ctx context.Context, u *domain.User) (*SignedSession, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		Enable:    true,
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	tok, err := s.jwtProvider.Sign(u.UserID, u.Email, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &SignedSession{Token: tok, Session: sess}, nil
}
