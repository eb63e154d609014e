package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/oslonotify/internal/types"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
}

// EmailSender delivers messages via SMTP with mandatory STARTTLS.
type EmailSender struct {
	cfg    EmailConfig
	logger *slog.Logger
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig, logger *slog.Logger) *EmailSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailSender{cfg: cfg, logger: logger}
}

// Send delivers one email to a single recipient.
func (s *EmailSender) Send(ctx context.Context, to string, msg *RenderedMessage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrDelivery, err)
	}

	m := buildMessage(s.cfg.FromEmail, to, msg)

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second
	dialer.StartTLSPolicy = gomail.MandatoryStartTLS

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: failed to send to %s (subject: %s): %w", types.ErrDelivery, to, msg.Subject, err)
	}

	s.logger.Info("email sent", "to", to, "subject", msg.Subject)
	return nil
}

func buildMessage(from, to string, msg *RenderedMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}
	return m
}
