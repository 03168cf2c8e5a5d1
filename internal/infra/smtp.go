package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"gescom/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPNonConfigure is returned when SMTP_HOST is empty.
var ErrSMTPNonConfigure = errors.New("smtp: SMTP_HOST non configuré")

// Mailer wraps SMTP configuration for sending documents as PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured reports whether an SMTP relay is set.
func (m *Mailer) Configured() bool { return m.host != "" }

// SendDocument mails a generated PDF.
func (m *Mailer) SendDocument(to, subject, body, pdfPath string) error {
	if !m.Configured() {
		return ErrSMTPNonConfigure
	}
	e := email.NewEmail()
	e.From = m.from
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
	return e.Send(m.addr, auth)
}
