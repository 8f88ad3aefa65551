package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable         = "enable"
	fieldUpdatedAt      = "updated_at"
	fieldName           = "name"
	fieldPasswordHash   = "password_hash"
	fieldEmailConfirmed = "email_confirmed"
	fieldConfirmedAt    = "confirmed_at"
	fieldAttempts       = "attempts"

	fieldIsDeliverable    = "is_deliverable"
	fieldIsDisposable     = "is_disposable"
	fieldIsRoleAccount    = "is_role_account"
	fieldIsSafeToSend     = "is_safe_to_send"
	fieldMXAcceptsMail    = "mx_accepts_mail"
	fieldStatus           = "status"
	fieldRawResponse      = "raw_response"
	fieldVerificationDate = "verification_date"
	fieldLastCheckedAt    = "last_checked_at"
	fieldCheckCount       = "check_count"
)

// emailIndex is the users table GSI used for lookups by email.
const emailIndex = "email-index"
