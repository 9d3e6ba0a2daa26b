package infra

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"cochera/internal/config"

	"github.com/jordan-wright/email"
	"github.com/sony/gobreaker"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP not configured")

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// Every send goes through a circuit breaker so a dead SMTP server does not
// keep the worker pool busy.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *gobreaker.CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker("SMTP", 60*time.Second),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether an SMTP host was configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// State exposes the breaker state for the health endpoint.
func (m *Mailer) State() string { return m.breaker.State().String() }

// SendReporte mails a shift report with its PDF attached.
func (m *Mailer) SendReporte(to, subject, body, pdfPath string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(e, m.addr, auth)
	})
	return err
}
