package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-signup-gate/internal/config"
	"github.com/go-signup-gate/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeSession = "session"
	purposeAttempt = "signup_attempt"
)

// Claims holds the session JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// attemptClaims carries a signup attempt between the form step and the OTP step.
// The pending password is never part of it.
type attemptClaims struct {
	Email         string `json:"email"`
	PasswordReset bool   `json:"password_reset"`
	Purpose       string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	expiry        time.Duration
	attemptExpiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey:    privKey,
		publicKey:     pubKey,
		expiry:        cfg.JWTExpiry,
		attemptExpiry: cfg.AttemptTokenExpiry,
	}, nil
}

// NewProviderFromKey builds a Provider around an in-memory key pair.
func NewProviderFromKey(key *rsa.PrivateKey, expiry, attemptExpiry time.Duration) *Provider {
	return &Provider{
		privateKey:    key,
		publicKey:     &key.PublicKey,
		expiry:        expiry,
		attemptExpiry: attemptExpiry,
	}
}

// Expiry is the lifetime of session tokens.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(userID, email, sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		Purpose:   purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := p.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeSession {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// SignAttempt encodes the non-secret half of a signup attempt.
func (p *Provider) SignAttempt(a domain.SignupAttempt) (string, error) {
	now := time.Now()
	claims := attemptClaims{
		Email:         a.Email,
		PasswordReset: a.IsPasswordResetFlow,
		Purpose:       purposeAttempt,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.attemptExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// OpenAttempt verifies an attempt token and returns the attempt it carries.
func (p *Provider) OpenAttempt(tokenStr string) (domain.SignupAttempt, error) {
	claims := &attemptClaims{}
	if err := p.parse(tokenStr, claims); err != nil {
		return domain.SignupAttempt{}, err
	}
	if claims.Purpose != purposeAttempt || claims.Email == "" {
		return domain.SignupAttempt{}, errors.New("invalid attempt token")
	}
	return domain.SignupAttempt{
		Email:               claims.Email,
		IsPasswordResetFlow: claims.PasswordReset,
	}, nil
}

func (p *Provider) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
