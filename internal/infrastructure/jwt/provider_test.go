package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/go-signup-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry, attemptExpiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKey(key, expiry, attemptExpiry)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Hour)

	tok, err := p.Sign("user-1", "a@b.co", "sess-1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute, time.Hour)

	tok, err := p.Sign("user-1", "a@b.co", "sess-1")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_ForeignKeyRejected(t *testing.T) {
	signer := newTestProvider(t, time.Hour, time.Hour)
	verifier := newTestProvider(t, time.Hour, time.Hour)

	tok, err := signer.Sign("user-1", "a@b.co", "sess-1")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.Error(t, err)
}

func TestAttempt_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Hour)

	tok, err := p.SignAttempt(domain.SignupAttempt{
		Email:               "a@b.co",
		IsPasswordResetFlow: true,
		PendingPassword:     "Secret123",
	})
	require.NoError(t, err)

	a, err := p.OpenAttempt(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", a.Email)
	assert.True(t, a.IsPasswordResetFlow)
	assert.Empty(t, a.PendingPassword)
}

func TestTokenPurposesDoNotMix(t *testing.T) {
	p := newTestProvider(t, time.Hour, time.Hour)

	session, err := p.Sign("user-1", "a@b.co", "sess-1")
	require.NoError(t, err)
	_, err = p.OpenAttempt(session)
	assert.Error(t, err)

	attempt, err := p.SignAttempt(domain.SignupAttempt{Email: "a@b.co"})
	require.NoError(t, err)
	_, err = p.Verify(attempt)
	assert.Error(t, err)
}
