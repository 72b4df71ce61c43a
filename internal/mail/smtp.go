package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSender relays every message through one SMTP server.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m *SMTPSender) SendEmail(ctx context.Context, msg Message) error {
	const op = "mail.SMTPSender.SendEmail"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(buildMessage(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	m.SetBody("text/plain", msg.Body)

	return m
}
