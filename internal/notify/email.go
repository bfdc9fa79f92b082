package notify

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Email sends transactional mail over SMTP: high-risk alerts to the
// configured security address and password reset links to account owners.
type Email struct {
	dialer  *gomail.Dialer
	from    string
	alertTo string
}

// NewEmail creates an Email channel for the given SMTP server.
func NewEmail(host string, port int, username, password, from, alertTo string) *Email {
	return &Email{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		alertTo: alertTo,
	}
}

// Name implements Channel.
func (e *Email) Name() string { return "email" }

// Send implements Channel, mailing the alert to the security address.
func (e *Email) Send(alert Alert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.alertTo)
	m.SetHeader("Subject", fmt.Sprintf("High-Risk Admin Action: %s", alert.Action))
	m.SetBody("text/plain", alert.Summary()+"\n\nThis action has been recorded in the audit trail.")
	return e.dialer.DialAndSend(m)
}

// LogMailer stands in for SMTP when no mail server is configured: reset
// links are written to the application log instead of delivered.
type LogMailer struct{}

// SendResetLink logs the reset link.
func (LogMailer) SendResetLink(to, link string) error {
	log.Info().Str("to", to).Str("link", link).Msg("SMTP not configured, logging reset link")
	return nil
}

// SendResetLink mails a password reset link to the account owner.
func (e *Email) SendResetLink(to, link string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset Your Password")
	m.SetBody("text/plain", fmt.Sprintf(
		"You requested a password reset for your account.\n\n"+
			"Open the link below to choose a new password:\n\n%s\n\n"+
			"The link expires in 1 hour. If you didn't request this, ignore this email.", link))
	return e.dialer.DialAndSend(m)
}
