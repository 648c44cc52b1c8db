package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	gomail "github.com/wneessen/go-mail"
)

// Templates are addressed by id from the auth flows; variables are
// interpolated into subject-specific bodies.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

var templates = map[string]struct {
	subject string
	body    *template.Template
}{
	TemplateVerifyEmail: {
		subject: "Confirm your email",
		body: template.Must(template.New(TemplateVerifyEmail).Parse(
			`<p>Hi {{.username}},</p>
<p>Please confirm your email address by following this link:</p>
<p><a href="{{.link}}">{{.link}}</a></p>`)),
	},
	TemplateResetPassword: {
		subject: "Reset Password request",
		body: template.Must(template.New(TemplateResetPassword).Parse(
			`<p>A password reset was requested for your account.</p>
<p>Use this token to set a new password: <code>{{.token}}</code></p>
<p>If you did not request a reset, ignore this message.</p>`)),
	},
}

// SMTPMailer delivers transactional mail over SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewSMTPMailer(host string, port int, username, password, from, fromName string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, recipient, templateID string, vars map[string]string) error {
	tmpl, ok := templates[templateID]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateID)
	}

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, vars); err != nil {
		return fmt.Errorf("render mail template %q: %w", templateID, err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(tmpl.subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.username),
		gomail.WithPassword(m.password),
		gomail.WithSSL(),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
