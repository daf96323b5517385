package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"trendradar/internal/digest"

	"github.com/wneessen/go-mail"
)

type Notifier interface {
	Send(ctx context.Context, msg *digest.Message) error
	Enabled() bool
}

type Config struct {
	Host     string `env:"SMTP_SERVER" validate:"required,hostname_rfc1123|ip"`
	Port     int    `env:"SMTP_PORT" validate:"min=1,max=65535"`
	Username string `env:"EMAIL_FROM" validate:"required"`
	Password string `env:"EMAIL_PASSWORD" validate:"required"`
	From     string `env:"EMAIL_FROM" validate:"required,email"`
	To       string `env:"EMAIL_TO" validate:"required,email"`
	Timeout  time.Duration

	// ImplicitTLS dials straight into TLS (SMTPS). Otherwise STARTTLS is mandatory.
	ImplicitTLS bool `env:"SMTP_SSL"`
}

// New returns an SMTP notifier, or the disabled notifier printing to out
// when cfg is nil.
func New(cfg *Config, out io.Writer) Notifier {
	if cfg == nil {
		return &Disabled{out: out}
	}
	return NewSMTPMailer(*cfg)
}

// SMTPMailer sends digests to one recipient over an authenticated, encrypted
// SMTP session.
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Enabled() bool {
	return true
}

func (m *SMTPMailer) Send(ctx context.Context, msg *digest.Message) error {
	message, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send digest to %s: %w", m.cfg.To, err)
	}

	slog.Info("digest sent", "to", m.cfg.To, "model", msg.Model, "subject", msg.Subject)
	return nil
}

func (m *SMTPMailer) buildMessage(msg *digest.Message) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := message.To(m.cfg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.cfg.To, err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextHTML, msg.HTML)

	return message, nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.cfg.Timeout),
	}

	if m.cfg.ImplicitTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	// explicit port last so the TLS options above cannot override it
	return append(opts, mail.WithPort(m.cfg.Port))
}

// Disabled is the notifier used when mail credentials are incomplete.
// It logs and prints the digest instead of sending it.
type Disabled struct {
	out io.Writer
}

func (d *Disabled) Enabled() bool {
	return false
}

func (d *Disabled) Send(ctx context.Context, msg *digest.Message) error {
	slog.Warn("mail delivery disabled, printing digest instead", "subject", msg.Subject, "model", msg.Model)
	if d.out == nil {
		return nil
	}

	_, err := fmt.Fprintf(d.out, "Subject: %s\n\n%s\n", msg.Subject, msg.HTML)
	return err
}
