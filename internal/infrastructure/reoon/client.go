package reoon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-signup-gate/internal/config"
	"github.com/go-signup-gate/internal/domain"
)

const verifyPath = "/api/v1/verify"

// maxBody caps how much of a checker response is read and cached.
const maxBody = 64 << 10

// response mirrors the fields of the Reoon power-mode answer that the
// signup policy reads. Everything else stays in the raw body.
type response struct {
	Email         string `json:"email"`
	Status        string `json:"status"`
	IsDeliverable bool   `json:"is_deliverable"`
	IsDisposable  bool   `json:"is_disposable"`
	IsRoleAccount bool   `json:"is_role_account"`
	IsSafeToSend  bool   `json:"is_safe_to_send"`
	MXAcceptsMail bool   `json:"mx_accepts_mail"`
}

// Client calls the Reoon email verifier.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.ReoonBaseURL,
		apiKey:  cfg.ReoonAPIKey,
		client: &http.Client{
			Timeout: cfg.VerifierTimeout,
		},
	}
}

// NewClientWith builds a Client against an arbitrary base URL.
func NewClientWith(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify asks the checker about email. Every failure, including a missing
// API key, wraps domain.ErrVerificationUnavailable.
func (c *Client) Verify(ctx context.Context, email string) (domain.DeliverabilityResult, error) {
	if c.apiKey == "" {
		return domain.DeliverabilityResult{}, fmt.Errorf("reoon api key not configured: %w", domain.ErrVerificationUnavailable)
	}

	q := url.Values{}
	q.Set("email", email)
	q.Set("key", c.apiKey)
	q.Set("mode", "power")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+verifyPath+"?"+q.Encode(), nil)
	if err != nil {
		return domain.DeliverabilityResult{}, fmt.Errorf("failed to create request: %w", domain.ErrVerificationUnavailable)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// The url.Error would echo the API key back through the query string.
		return domain.DeliverabilityResult{}, fmt.Errorf("reoon request failed: %w", domain.ErrVerificationUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.DeliverabilityResult{}, fmt.Errorf("failed to read response: %w", domain.ErrVerificationUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.DeliverabilityResult{}, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, domain.ErrVerificationUnavailable)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.DeliverabilityResult{}, fmt.Errorf("failed to decode response: %w", domain.ErrVerificationUnavailable)
	}
	if r.Status == "" {
		return domain.DeliverabilityResult{}, fmt.Errorf("response has no status: %w", domain.ErrVerificationUnavailable)
	}

	return domain.DeliverabilityResult{
		IsDeliverable: r.IsDeliverable,
		IsDisposable:  r.IsDisposable,
		IsRoleAccount: r.IsRoleAccount,
		IsSafeToSend:  r.IsSafeToSend,
		MXAcceptsMail: r.MXAcceptsMail,
		Status:        r.Status,
		Raw:           json.RawMessage(bytes.TrimSpace(body)),
	}, nil
}
