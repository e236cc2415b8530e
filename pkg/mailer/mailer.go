package mailer

import (
	"context"
	"errors"
)

// Mailer provides high-level sending of templated transactional emails.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	layout   string
}

// New creates a Mailer with the given sender, renderer, and default layout.
func New(sender Sender, renderer *Renderer, layout string) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, layout: layout}
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	To       string // Single recipient
	Template string // Template filename (e.g. "confirm.md")
	Data     any    // Template data
	Subject  string // Override the template's Subject metadata
}

// Send renders a template and delivers the result.
// Subject resolution: params.Subject, then template metadata.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if params.To == "" {
		return ErrNoRecipient
	}

	result, err := m.renderer.Render(m.layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if s, ok := result.Metadata["Subject"].(string); ok {
			subject = s
		}
	}
	if subject == "" {
		return ErrNoSubject
	}

	email := &Email{
		To:      []string{params.To},
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
