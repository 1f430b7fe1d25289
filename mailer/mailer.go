// Package mailer wraps the email-sending collaborator. The auth package uses
// it for password-reset notifications; a send failure must propagate to the
// caller so the reset flow can invalidate the token it just issued.
package mailer

import (
	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends a plain-text message to one recipient.
// Defined as an interface so the reset flow can be tested with a fake.
type Mailer interface {
	Send(to, subject, body string) error
}

// smtpMailer delivers through the SMTP relay named in the configuration.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates an SMTP-backed Mailer.
func New(cfg *config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send composes and delivers the message, classifying any failure as an
// upstream error. gomail dials per send, so there is no connection state to
// manage between requests.
func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return apperror.NewExternalServiceError("failed to send email", err)
	}
	return nil
}
