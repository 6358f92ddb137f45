package mailer

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dexabrain/event-backend/config"
)

// SMTP sends mail through an SMTP relay via gomail.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTP creates an SMTP dispatcher from email config.
func NewSMTP(cfg config.EmailConfig, logger *zap.Logger) *SMTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTP{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.FromAddress,
		logger: logger,
	}
}

// Send delivers one message. gomail has no context support, so the dial
// and send run in a goroutine and ctx cancellation abandons the attempt;
// an abandoned send counts as failed.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, msg.DisplayName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Warn("smtp send failed", zap.String("to", msg.To), zap.Error(err))
			return &DeliveryError{To: msg.To, Err: err}
		}
		return nil
	case <-ctx.Done():
		s.logger.Warn("smtp send abandoned", zap.String("to", msg.To), zap.Error(ctx.Err()))
		return &DeliveryError{To: msg.To, Err: ctx.Err()}
	}
}
