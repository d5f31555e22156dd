package mailer

import (
	"context"
	"fmt"

	"freelance_service/internal/config"
	"freelance_service/internal/models"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers messages straight over SMTP.
type Mailer struct {
	from   string
	dialer dialer
}

// New returns a Mailer for the given SMTP account. An empty from falls back
// to the account's username.
func New(cfg config.SMTP, from string) *Mailer {
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(ctx context.Context, msg models.Message) error {
	const op = "mailer.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.dialer.DialAndSend(m.build(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Mailer) build(msg models.Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.Email)
	gm.SetHeader("Subject", msg.Subject)

	if msg.HTML {
		gm.SetBody("text/html", msg.Body)
	} else {
		gm.SetBody("text/plain", msg.Body)
	}

	return gm
}
