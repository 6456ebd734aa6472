// Package mail delivers composed HTML messages, either over SMTP or as an
// .eml draft on disk for review before sending.
package mail

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bizwiz/internal/config"
	"bizwiz/internal/errors"

	"github.com/go-playground/validator/v10"
	gomail "github.com/wneessen/go-mail"
)

// Message is one outgoing HTML email
type Message struct {
	From        string   `validate:"omitempty,email"`
	To          []string `validate:"required,min=1,dive,email"`
	Cc          []string `validate:"omitempty,dive,email"`
	Subject     string   `validate:"required"`
	HTML        string   `validate:"required"`
	Attachments []string
}

// Sender delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var validate = validator.New()

// Validate checks addresses and required fields, and that every attachment
// exists
func (m Message) Validate() error {
	if err := validate.Struct(m); err != nil {
		return &errors.AppError{Code: errors.CodeValidationError, Message: "invalid message", Cause: err}
	}
	for _, path := range m.Attachments {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return errors.NotFound(fmt.Sprintf("attachment %s", path))
		}
	}
	return nil
}

// build converts m into a go-mail message, using from when m.From is empty
func build(m Message, from string) (*gomail.Msg, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.From != "" {
		from = m.From
	}

	msg := gomail.NewMsg()
	if from != "" {
		if err := msg.From(from); err != nil {
			return nil, errors.ValidationError(fmt.Sprintf("invalid sender %q: %v", from, err))
		}
	}
	if err := msg.To(m.To...); err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid recipients: %v", err))
	}
	if len(m.Cc) > 0 {
		if err := msg.Cc(m.Cc...); err != nil {
			return nil, errors.ValidationError(fmt.Sprintf("invalid cc: %v", err))
		}
	}
	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, m.HTML)
	for _, path := range m.Attachments {
		msg.AttachFile(path, gomail.WithFileName(filepath.Base(path)))
	}
	return msg, nil
}

// SMTPSender sends through an SMTP relay
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender builds a client from the SMTP settings. Authentication is
// only attempted when a username is configured; TLS is used when offered.
func NewSMTPSender(cfg config.SMTPConfig, timeout time.Duration) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.ConfigInvalid("SMTP host is not configured")
	}
	if cfg.From == "" {
		return nil, errors.ConfigInvalid("SMTP sender address is not configured")
	}

	opts := []gomail.Option{gomail.WithTLSPolicy(gomail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if timeout > 0 {
		opts = append(opts, gomail.WithTimeout(timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeConfigInvalid, Message: "invalid SMTP settings", Cause: err}
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers msg, dialling a fresh connection each time
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := build(m, s.from)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.ExternalServiceError("smtp", err)
	}
	log.Printf("[Mail] Sent %q to %d recipient(s) in %.2fms", m.Subject, len(m.To)+len(m.Cc),
		float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// DraftWriter writes the message to an .eml file instead of sending it
type DraftWriter struct {
	Path string
	From string
}

// Send writes msg to d.Path, replacing any existing draft
func (d *DraftWriter) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Path == "" {
		return errors.InvalidInput("draft path is required")
	}
	msg, err := build(m, d.From)
	if err != nil {
		return err
	}
	if err := msg.WriteToFile(d.Path); err != nil {
		return fmt.Errorf("failed to write draft %s: %w", d.Path, err)
	}
	log.Printf("[Mail] Draft %q written to %s", m.Subject, d.Path)
	return nil
}
