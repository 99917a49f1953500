package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/quiz-kiosk-api/internal/config"
)

// Mailer sends emails. Implementations must respect ctx cancellation so a
// hung SMTP server cannot hold a request open.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	// net/smtp has no context support; run the send in a goroutine and abandon
	// it on deadline. The orphaned goroutine ends when the TCP dial times out.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OTPBody renders the plain-text body of the verification email.
func OTPBody(code string) string {
	return fmt.Sprintf("Your OTP is %s. Valid for 5 minutes.\r\n\r\nIf you didn't request this code, please ignore this email.", code)
}
