// Package mailer delivers outbound mail over SMTP. A transport error is
// reported as ErrDeliveryFailed; success only means the relay accepted the
// message, never that the recipient received it.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"teamshare/internal/models"
)

var ErrDeliveryFailed = errors.New("mail delivery failed")

type Mailer struct {
	host     string
	port     int
	username string
	password string
}

func New(host string, port int, username, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (m *Mailer) Send(ctx context.Context, msg models.MailMessage) error {
	const op = "mailer.Send"

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.username)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	if err := dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrDeliveryFailed, err)
	}

	return nil
}
