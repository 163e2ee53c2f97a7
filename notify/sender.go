// Package notify renders and delivers the storefront's transactional email.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/Ashish5180/vibe-bites/config"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender delivers through an SMTP relay. Port 465 uses implicit TLS,
// anything else STARTTLS when the server offers it.
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %q: %w", m.Subject, err)
	}
	return nil
}

// LogSender only logs. Used when no SMTP host is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, m Message) error {
	s.Log.Info("email not sent, smtp disabled", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}
