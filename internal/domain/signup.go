package domain

// SignupState is a step of the signup state machine.
type SignupState string

const (
	StateFormEntered     SignupState = "form_entered"
	StateEmailVerifying  SignupState = "email_verifying"
	StateEmailRejected   SignupState = "email_rejected"
	StateEmailAccepted   SignupState = "email_accepted"
	StateAccountCreating SignupState = "account_creating"
	StateOtpSending      SignupState = "otp_sending"
	StateAwaitingOtp     SignupState = "awaiting_otp"
	// StateVerified ends an attempt: the OTP was accepted and a session exists.
	StateVerified        SignupState = "verified"
)

type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OtpSubmission is validated by the workflow itself: Email may be empty and
// recovered from the attempt token.
type OtpSubmission struct {
	Email        string `json:"email"`
	Code         string `json:"code"`
	AttemptToken string `json:"attempt_token"`
}

type ResendRequest struct {
	Email        string `json:"email"`
	AttemptToken string `json:"attempt_token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type NewPasswordRequest struct {
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupAttempt is the context carried between the form stage and the OTP
// stage. It travels as a signed token; PendingPassword never leaves memory.
type SignupAttempt struct {
	Email               string `json:"email"`
	IsPasswordResetFlow bool   `json:"is_password_reset_flow"`
	PendingPassword     string `json:"-"`
}
