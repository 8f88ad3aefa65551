package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewOTP generates a cryptographically random 6-digit code, zero padded.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
