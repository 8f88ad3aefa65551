package domain

import "time"

type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}

// OTPCode is a one-time code issued to a user's email.
// PK: user_id, SK: type. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTPCode struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Type      string    `json:"type" dynamodbav:"type"`
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	// Attempts counts wrong guesses against this code.
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// OTPTypeEmail is the only OTP type issued today.
const OTPTypeEmail = "email_otp"
