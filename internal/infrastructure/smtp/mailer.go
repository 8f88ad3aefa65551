package smtp

import (
	"context"
	"fmt"

	"github.com/go-signup-gate/internal/config"
	"github.com/go-signup-gate/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer sends templated transactional emails.
type Mailer interface {
	Send(ctx context.Context, tmpl domain.EmailTemplate, to string, p domain.EmailPayload) error
}

// dialer is the part of *gomail.Dialer the mailer uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type mailer struct {
	from     string
	dialer   dialer
	renderer *renderer
}

func NewMailer(cfg *config.Config) (Mailer, error) {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newMailer(cfg.SMTPFrom, cfg.AppName, d)
}

func newMailer(from, appName string, d dialer) (*mailer, error) {
	r, err := newRenderer(appName)
	if err != nil {
		return nil, err
	}
	return &mailer{from: from, dialer: d, renderer: r}, nil
}

// Send renders tmpl and delivers it. gomail has no context support, so the
// SMTP exchange runs on its own goroutine and Send returns when ctx is done.
func (m *mailer) Send(ctx context.Context, tmpl domain.EmailTemplate, to string, p domain.EmailPayload) error {
	subject, body, err := m.renderer.render(tmpl, to, p)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %s email: %w", tmpl, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %s email: %w", tmpl, ctx.Err())
	}
}
