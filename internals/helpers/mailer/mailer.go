package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is one outgoing email. HTML is optional; Text is always sent.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer delivers through an SMTP relay, one connection per message.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("smtp host and from address are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}, nil
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := validate(m); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}

	// gomail has no context support; the dial runs in a goroutine so a
	// cancelled task stops waiting for it.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer is used when SMTP is not configured. It logs and succeeds.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	if err := validate(m); err != nil {
		return err
	}
	log.Printf("[MAIL] smtp disabled, would send %q to %s", m.Subject, m.To)
	return nil
}

func validate(m Message) error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("mail: empty recipient")
	}
	if strings.ContainsAny(m.To+m.Subject+m.ReplyTo, "\r\n") {
		return errors.New("mail: header contains a line break")
	}
	return nil
}
