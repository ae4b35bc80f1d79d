package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// MailConfig holds the SMTP relay and credentials.
// Credentials normally come from the environment.
type MailConfig struct {
	Host     string        `env:"SMTP_HOST" yaml:"host"`
	Port     int           `env:"SMTP_PORT" yaml:"port"`
	Sender   string        `env:"SENDER_EMAIL" yaml:"sender"`
	Password string        `env:"APP_PASSWORD" yaml:"-"`
	Receiver string        `env:"RECEIVER_EMAIL" yaml:"receiver"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" yaml:"timeout"`
}

// SetDefaults points at Gmail's implicit-TLS relay and sends to the sender
// when no receiver is configured.
func (c *MailConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "smtp.gmail.com"
	}
	if c.Port == 0 {
		c.Port = 465
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Receiver == "" {
		c.Receiver = c.Sender
	}
}

// Validate fails when the credentials needed to send are missing
func (c *MailConfig) Validate() error {
	if c.Sender == "" {
		return fmt.Errorf("mail.sender is required (set SENDER_EMAIL)")
	}
	if c.Password == "" {
		return fmt.Errorf("mail password is required (set APP_PASSWORD)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("mail.port must be between 1 and 65535")
	}
	return nil
}

// SMTPNotifier sends each alert as a plain-text email over SMTP with
// implicit TLS, authenticating as the sender.
type SMTPNotifier struct {
	cfg MailConfig
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier validates cfg and returns a notifier
func NewSMTPNotifier(cfg MailConfig) (*SMTPNotifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

// Send opens a session, delivers msg and closes the session
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	m, err := n.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Sender),
		mail.WithPassword(n.cfg.Password),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(n.cfg.Receiver); err != nil {
		return nil, fmt.Errorf("invalid receiver address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
