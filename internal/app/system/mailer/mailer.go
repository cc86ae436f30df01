// internal/app/system/mailer/mailer.go
package mailer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Email is a single outgoing message. At least one of TextBody or HTMLBody
// should be set.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config selects and configures the delivery backend.
type Config struct {
	Backend  string // "smtp", "postmark", "sendgrid" or "log"
	From     string
	FromName string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	PostmarkServerToken string
	SendGridAPIKey      string
}

// ErrNoRecipient is returned when Send is called without a To address.
var ErrNoRecipient = errors.New("mailer: missing recipient")

type sender interface {
	send(from string, e Email) error
}

// Mailer delivers email through the configured backend.
type Mailer struct {
	backend string
	from    string
	s       sender
	log     *zap.Logger
}

// New builds a Mailer for cfg.Backend. An empty backend means "log".
func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "log"
	}

	var s sender
	switch backend {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, errors.New("mailer: smtp backend requires mail_smtp_host")
		}
		s = newSMTPSender(cfg)
	case "postmark":
		if cfg.PostmarkServerToken == "" {
			return nil, errors.New("mailer: postmark backend requires postmark_server_token")
		}
		s = newPostmarkSender(cfg.PostmarkServerToken)
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("mailer: sendgrid backend requires sendgrid_api_key")
		}
		s = newSendGridSender(cfg.SendGridAPIKey)
	case "log":
		s = logSender{log: logger}
	default:
		return nil, fmt.Errorf("mailer: unknown backend %q", cfg.Backend)
	}

	return &Mailer{backend: backend, from: formatFrom(cfg.From, cfg.FromName), s: s, log: logger}, nil
}

// Backend returns the name of the active delivery backend.
func (m *Mailer) Backend() string { return m.backend }

// Send delivers e synchronously.
func (m *Mailer) Send(e Email) error {
	if strings.TrimSpace(e.To) == "" {
		return ErrNoRecipient
	}
	if err := m.s.send(m.from, e); err != nil {
		return fmt.Errorf("mailer(%s): %w", m.backend, err)
	}
	m.log.Debug("email sent", zap.String("backend", m.backend), zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}

func formatFrom(addr, name string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

// logSender writes messages to the log instead of delivering them. Used in
// development and tests.
type logSender struct {
	log *zap.Logger
}

func (l logSender) send(from string, e Email) error {
	l.log.Info("email (log backend)",
		zap.String("from", from),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("text", e.TextBody),
	)
	return nil
}
