// Package mail delivers the rendered digest over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Config holds SMTP transport settings. Password is an app password
// resolved from the environment at config load.
type Config struct {
	Host      string
	Port      int
	FromName  string
	FromEmail string
	To        []string
	Password  string
}

// Sender sends HTML digests.
type Sender struct {
	cfg Config
}

// New creates a sender. Transport settings must be complete; a run that
// gets as far as sending must not silently drop the digest.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("mail: from address is required")
	}
	if len(cfg.To) == 0 {
		return nil, errors.New("mail: at least one recipient is required")
	}
	return &Sender{cfg: cfg}, nil
}

// Send delivers one HTML message over STARTTLS.
func (s *Sender) Send(ctx context.Context, subject, htmlBody string) error {
	if s == nil {
		return errors.New("mail: sender is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromEmail); err != nil {
		return fmt.Errorf("mail: set from: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return fmt.Errorf("mail: set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.FromEmail),
		gomail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("mail: create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
