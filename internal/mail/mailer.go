package mail

import (
	"fmt"
	"log"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers the transactional emails the auth flows enqueue
// out-of-band. Implementations must be safe for concurrent use.
type Mailer interface {
	SendVerification(email, username, token string) error
	SendPasswordReset(email, username, code, token string) error
}

// SMTPMailer sends over SMTP.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// NewSMTP creates a mailer for the given SMTP account. baseURL is embedded
// in the links the emails carry.
func NewSMTP(host string, port int, username, password, from, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		baseURL: baseURL,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendVerification delivers the email-confirmation link.
func (m *SMTPMailer) SendVerification(email, username, token string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Follow the link to confirm your email:</p>
<p><a href="%s/api/auth/verify_email/%s">Confirm email</a></p>
<img src="%s/api/email/%s" alt="" width="1" height="1">`,
		username, m.baseURL, token, m.baseURL, username)
	return m.send(email, "Confirm your email", body)
}

// SendPasswordReset delivers the temp code together with the reset token.
func (m *SMTPMailer) SendPasswordReset(email, username, code, token string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your password reset code is <b>%s</b>.</p>
<p>Submit it together with this token: <code>%s</code></p>
<img src="%s/api/email/%s" alt="" width="1" height="1">`,
		username, code, token, m.baseURL, username)
	return m.send(email, "Password reset", body)
}

// LogMailer writes mails to the log instead of sending them. Used in
// development when no SMTP account is configured.
type LogMailer struct{}

func (LogMailer) SendVerification(email, username, token string) error {
	log.Printf("[mail] verification for %s (%s): token=%s", email, username, token)
	return nil
}

func (LogMailer) SendPasswordReset(email, username, code, token string) error {
	log.Printf("[mail] password reset for %s (%s): code=%s token=%s", email, username, code, token)
	return nil
}
