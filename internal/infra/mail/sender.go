package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Transport delivers one message. Implementations should honour ctx where they can.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPTransport struct {
	dialer *gomail.Dialer
}

func NewSMTPTransport(host string, port int, user, password string) *SMTPTransport {
	return &SMTPTransport{dialer: gomail.NewDialer(host, port, user, password)}
}

func (s *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	// gomail has no context support; the dial itself is bounded by gomail's own timeout.
	errCh := make(chan error, 1)
	go func() { errCh <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send smtp email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send smtp email: %w", ctx.Err())
	}
}

// LogTransport is the mock mode used when no mail server is configured.
type LogTransport struct {
	logger *zap.Logger
}

func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info("mail mock: would send notification",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
