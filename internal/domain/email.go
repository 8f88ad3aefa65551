package domain

// EmailTemplate selects the transactional email to send.
type EmailTemplate string

const (
	TemplateVerification              EmailTemplate = "verification"
	TemplateWelcome                   EmailTemplate = "welcome"
	TemplatePasswordResetConfirmation EmailTemplate = "password-reset-confirmation"
)

// EmailPayload carries the template variables. Unused fields are ignored.
type EmailPayload struct {
	OTP             string
	IsPasswordReset bool
	LinkURL         string
}
