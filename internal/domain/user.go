package domain

import "time"

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Email          string     `json:"email" dynamodbav:"email"`
	Name           string     `json:"name" dynamodbav:"name"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	EmailConfirmed bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty" dynamodbav:"confirmed_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// AccountMetadata is the free-form profile data attached at account creation.
type AccountMetadata struct {
	Name string `json:"name"`
}
