package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"mathblog/pkg/mailer"
)

// Sender implements mailer.Sender and mailer.BatchSender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// From returns the default sender address in RFC 5322 form.
func (s *Sender) From() string {
	if s.config.SenderName != "" {
		return fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
	}
	return s.config.SenderEmail
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if s.config.APIKey == "" {
		return mailer.ErrNotConfigured
	}

	_, err := s.client.Emails.SendWithContext(ctx, s.convert(email))
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}

// SendBatch implements mailer.BatchSender. All messages are submitted in one
// API call; Resend reports a single batch-level error.
func (s *Sender) SendBatch(ctx context.Context, emails []*mailer.Email) error {
	if s.config.APIKey == "" {
		return mailer.ErrNotConfigured
	}
	if len(emails) == 0 {
		return nil
	}

	batch := make([]*resend.SendEmailRequest, len(emails))
	for i, email := range emails {
		batch[i] = s.convert(email)
	}

	if _, err := s.client.Batch.SendWithContext(ctx, batch); err != nil {
		return fmt.Errorf("resend: failed to send batch of %d: %w", len(batch), err)
	}
	return nil
}

func (s *Sender) convert(email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = s.From()
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Headers: email.Headers,
	}
}
