package verification

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPSender delivers mail through a plain SMTP relay with LOGIN auth.
type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Password string
}

func (s *SMTPSender) Send(_ context.Context, to, subject, htmlBody string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.User, to, subject, htmlBody,
	)

	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, s.User, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
