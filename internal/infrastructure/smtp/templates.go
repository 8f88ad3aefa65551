package smtp

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/go-signup-gate/internal/domain"
)

const layout = `<!DOCTYPE html>
<html>
<body style="background-color:#f0f0f0;font-family:-apple-system,'Segoe UI',Roboto,sans-serif;color:#404040;margin:0">
<div style="background-color:#ffffff;border-radius:8px;margin:0 auto;padding:20px;width:465px">
<h1 style="font-size:24px;margin:0 0 20px 0">{{.Heading}}</h1>
{{template "content" .}}
</div>
</body>
</html>`

var contents = map[domain.EmailTemplate]string{
	domain.TemplateVerification: `{{define "content"}}
<p>{{if .IsPasswordReset}}You requested a password reset. Please use the following code to set a new password:{{else}}Thank you for signing up, please use the following code to verify your email:{{end}}</p>
<p style="font-size:20px;font-weight:bold;background-color:#f0f0f0;padding:10px;text-align:center">{{.OTP}}</p>
<p>If you didn't request this email, you can safely ignore it.</p>
{{end}}`,
	domain.TemplateWelcome: `{{define "content"}}
<p>Thank you for signing up, {{.Email}}! We're excited to have you on board.</p>
<p><a href="{{.LinkURL}}" style="background-color:#000000;color:#ffffff;padding:8px 16px">Go to dashboard</a></p>
<p>Best regards,<br>The {{.AppName}} Team</p>
{{end}}`,
	domain.TemplatePasswordResetConfirmation: `{{define "content"}}
<p>Your password for {{.Email}} has been reset. Please use it to log in to your account.</p>
<p><a href="{{.LinkURL}}" style="background-color:#000000;color:#ffffff;padding:8px 16px">Login</a></p>
<p>Best regards,<br>The {{.AppName}} Team</p>
{{end}}`,
}

// view is the data every template renders from.
type view struct {
	domain.EmailPayload
	Heading string
	Email   string
	AppName string
}

type renderer struct {
	appName   string
	templates map[domain.EmailTemplate]*template.Template
}

func newRenderer(appName string) (*renderer, error) {
	r := &renderer{appName: appName, templates: make(map[domain.EmailTemplate]*template.Template)}
	for name, content := range contents {
		t, err := template.New(string(name)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.Parse(content); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// subject doubles as the page heading.
func (r *renderer) subject(name domain.EmailTemplate, p domain.EmailPayload) string {
	switch name {
	case domain.TemplateVerification:
		if p.IsPasswordReset {
			return "Reset your password"
		}
		return "Verify your email"
	case domain.TemplateWelcome:
		return fmt.Sprintf("Welcome to %s!", r.appName)
	case domain.TemplatePasswordResetConfirmation:
		return "Your password has been reset successfully"
	}
	return ""
}

func (r *renderer) render(name domain.EmailTemplate, to string, p domain.EmailPayload) (subject, body string, err error) {
	t, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject = r.subject(name, p)
	var buf bytes.Buffer
	if err := t.Execute(&buf, view{EmailPayload: p, Heading: subject, Email: to, AppName: r.appName}); err != nil {
		return "", "", fmt.Errorf("render %s: %w", name, err)
	}
	return subject, buf.String(), nil
}
