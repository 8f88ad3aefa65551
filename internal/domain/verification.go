package domain

import (
	"encoding/json"
	"time"
)

// FreshnessWindow is how long a deliverability result may be reused.
// A record is fresh iff now - VerificationDate < FreshnessWindow.
const FreshnessWindow = 24 * time.Hour

// StatusSafe is the only checker status that lets a signup through.
const StatusSafe = "safe"

// Rejection reasons, in the order the policy evaluates them.
const (
	ReasonUndeliverable = "invalid or undeliverable"
	ReasonDisposable    = "disposable addresses not allowed"
	ReasonRisky         = "risky or invalid"
)

// DeliverabilityResult is the normalized answer of the deliverability checker.
type DeliverabilityResult struct {
	IsDeliverable bool
	IsDisposable  bool
	IsRoleAccount bool
	IsSafeToSend  bool
	MXAcceptsMail bool
	Status        string
	Raw           json.RawMessage
}

// VerificationRecord caches a DeliverabilityResult per email.
// PK: email. Stale records are kept as history and never deleted.
type VerificationRecord struct {
	Email            string    `json:"email" dynamodbav:"email"`
	IsDeliverable    bool      `json:"is_deliverable" dynamodbav:"is_deliverable"`
	IsDisposable     bool      `json:"is_disposable" dynamodbav:"is_disposable"`
	IsRoleAccount    bool      `json:"is_role_account" dynamodbav:"is_role_account"`
	IsSafeToSend     bool      `json:"is_safe_to_send" dynamodbav:"is_safe_to_send"`
	MXAcceptsMail    bool      `json:"mx_accepts_mail" dynamodbav:"mx_accepts_mail"`
	Status           string    `json:"status" dynamodbav:"status"`
	RawResponse      string    `json:"raw_response" dynamodbav:"raw_response"`
	VerificationDate time.Time `json:"verification_date" dynamodbav:"verification_date"`
	LastCheckedAt    time.Time `json:"last_checked_at" dynamodbav:"last_checked_at"`
	CheckCount       int       `json:"check_count" dynamodbav:"check_count"`
}

// IsFresh reports whether the record may still be used for a decision at now.
func (r *VerificationRecord) IsFresh(now time.Time) bool {
	return now.Sub(r.VerificationDate) < FreshnessWindow
}

// Result returns the cached checker answer.
func (r *VerificationRecord) Result() DeliverabilityResult {
	return DeliverabilityResult{
		IsDeliverable: r.IsDeliverable,
		IsDisposable:  r.IsDisposable,
		IsRoleAccount: r.IsRoleAccount,
		IsSafeToSend:  r.IsSafeToSend,
		MXAcceptsMail: r.MXAcceptsMail,
		Status:        r.Status,
		Raw:           json.RawMessage(r.RawResponse),
	}
}

// Decision is the accept/reject outcome for one email.
type Decision struct {
	Accepted bool
	Reason   string
}

// Decide applies the signup policy. Rules are ordered; the first match wins.
func Decide(r DeliverabilityResult) Decision {
	switch {
	case !r.IsDeliverable:
		return Decision{Reason: ReasonUndeliverable}
	case r.IsDisposable:
		return Decision{Reason: ReasonDisposable}
	case r.Status != StatusSafe:
		return Decision{Reason: ReasonRisky}
	}
	return Decision{Accepted: true}
}
