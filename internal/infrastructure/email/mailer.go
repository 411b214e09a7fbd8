// Package email sends transactional email.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = "Welth ( AI Finance Platform ) <onboarding@resend.dev>"

// Email is a single outgoing HTML message
type Email struct {
	To      string
	Subject string
	HTML    string
}

// SendResult reports the outcome of a send. Failures are carried in Err,
// never returned or panicked.
type SendResult struct {
	Success bool
	ID      string
	Err     error
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg Email) SendResult
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// ResendOption configures a ResendMailer
type ResendOption func(*ResendMailer)

// WithFrom overrides the sender address
func WithFrom(from string) ResendOption {
	return func(m *ResendMailer) {
		if from != "" {
			m.from = from
		}
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(u *url.URL) ResendOption {
	return func(m *ResendMailer) {
		m.client.BaseURL = u
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ResendOption {
	return func(m *ResendMailer) {
		m.logger = logger
	}
}

// NewResendMailer creates a mailer using apiKey. httpClient may be nil.
func NewResendMailer(apiKey string, httpClient *http.Client, opts ...ResendOption) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend API key is required")
	}

	var client *resend.Client
	if httpClient != nil {
		client = resend.NewCustomClient(httpClient, apiKey)
	} else {
		client = resend.NewClient(apiKey)
	}

	m := &ResendMailer{
		client: client,
		from:   DefaultFrom,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Send delivers msg. It never returns an error; see SendResult.
func (m *ResendMailer) Send(ctx context.Context, msg Email) SendResult {
	if msg.To == "" {
		err := errors.New("recipient is required")
		m.logger.Error("Failed to send email", zap.String("subject", msg.Subject), zap.Error(err))
		return SendResult{Err: err}
	}

	resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		err = fmt.Errorf("resend send failed: %w", err)
		m.logger.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return SendResult{Err: err}
	}

	m.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("email_id", resp.Id),
	)
	return SendResult{Success: true, ID: resp.Id}
}

// LogMailer logs messages instead of sending them. Used when email is
// disabled.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs msg and reports success
func (m *LogMailer) Send(_ context.Context, msg Email) SendResult {
	m.logger.Info("Email delivery disabled, message logged",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_length", len(msg.HTML)),
	)
	return SendResult{Success: true}
}

var (
	_ Mailer = (*ResendMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
