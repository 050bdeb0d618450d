// Package mailer отправляет письма: напоминания о дедлайнах и ссылки сброса пароля.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/awakra/to-do-list/internal/config"
	"github.com/awakra/to-do-list/internal/logger"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("не указан получатель")

type Message struct {
	To      string
	Subject string
	Body    string
}

// SMTPSender отправляет письма через SMTP
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("создание SMTP клиента: %w", err)
	}

	return &SMTPSender{
		client: client,
		from:   cfg.DefaultSender,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("адрес отправителя: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("адрес получателя: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("отправка письма: %w", err)
	}
	return nil
}

// LogSender пишет письма в лог, когда SMTP не настроен
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger.Info("Mailer: SMTP не настроен, письмо записано в лог",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
