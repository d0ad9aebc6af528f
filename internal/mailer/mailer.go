package mailer

import (
	"fmt"

	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Mailer sends the account emails (verification, password reset). The auth
// service only depends on this interface.
type Mailer interface {
	SendVerificationEmail(to, link string) error
	SendPasswordResetEmail(to, link string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates a Mailer backed by gomail.
func NewSMTP(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) SendVerificationEmail(to, link string) error {
	body := "Welcome to the IST alumni app!\n\n" +
		"Please verify your email address by opening the link below:\n\n" +
		link + "\n\n" +
		"If you did not create this account you can ignore this message.\n"
	return m.send(to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(to, link string) error {
	body := "A password reset was requested for your account.\n\n" +
		"Open the link below to choose a new password:\n\n" +
		link + "\n\n" +
		"If you did not request a reset you can ignore this message.\n"
	return m.send(to, "Reset your password", body)
}

// LogMailer writes the links to the log instead of sending mail. Used when
// SMTP is not configured so development setups still surface the links.
type LogMailer struct {
	Log *logger.Logger
}

func (m *LogMailer) SendVerificationEmail(to, link string) error {
	m.Log.Info().Str("to", to).Str("link", link).Msg("verification email (smtp disabled)")
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(to, link string) error {
	m.Log.Info().Str("to", to).Str("link", link).Msg("password reset email (smtp disabled)")
	return nil
}
