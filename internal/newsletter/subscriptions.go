package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"mathblog/internal/domain"
	"mathblog/pkg/mailer"
)

// ErrInvalidEmail indicates the submitted address is not a valid email.
var ErrInvalidEmail = errors.New("newsletter: invalid email address")

// SubscriberDirectory is the full subscriber persistence surface used by the
// subscription flow (the send pipeline only needs SubscriberStore).
type SubscriberDirectory interface {
	SubscriberStore
	Create(ctx context.Context, sub domain.Subscriber) (domain.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (domain.Subscriber, error)
	ConfirmByToken(ctx context.Context, token string, at time.Time) (domain.Subscriber, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]domain.Subscriber, error)
}

// Subscriptions handles sign-up and opt-in confirmation. With double opt-in
// enabled, new subscribers get a confirmation email and stay excluded from
// sends until the token is redeemed; otherwise sign-up confirms immediately,
// matching the single-opt-in deployments this started from.
type Subscriptions struct {
	subs        SubscriberDirectory
	mail        *mailer.Mailer
	siteURL     string
	doubleOptIn bool
	log         *slog.Logger
}

// NewSubscriptions wires the subscription flow. mail may be nil when double
// opt-in is disabled.
func NewSubscriptions(subs SubscriberDirectory, mail *mailer.Mailer, siteURL string, doubleOptIn bool, log *slog.Logger) *Subscriptions {
	return &Subscriptions{
		subs:        subs,
		mail:        mail,
		siteURL:     strings.TrimRight(siteURL, "/"),
		doubleOptIn: doubleOptIn,
		log:         log,
	}
}

// Subscribe registers an email address. Returns domain.ErrDuplicate when the
// address is already confirmed, and ErrInvalidEmail on malformed input. An
// existing unconfirmed subscriber gets the confirmation email again rather
// than an error.
func (s *Subscriptions) Subscribe(ctx context.Context, email string) (domain.Subscriber, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Subscriber{}, err
	}

	existing, err := s.subs.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Confirmed() {
			return domain.Subscriber{}, fmt.Errorf("%s: %w", email, domain.ErrDuplicate)
		}
		s.sendConfirmation(ctx, existing)
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Subscriber{}, fmt.Errorf("look up subscriber: %w", err)
	}

	sub := domain.Subscriber{
		Email:             email,
		ConfirmationToken: uuid.NewString(),
	}
	if !s.doubleOptIn {
		now := time.Now().UTC()
		sub.ConfirmedAt = &now
	}

	created, err := s.subs.Create(ctx, sub)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("create subscriber: %w", err)
	}

	if s.doubleOptIn {
		s.sendConfirmation(ctx, created)
	}
	return created, nil
}

// Confirm redeems an opt-in token.
func (s *Subscriptions) Confirm(ctx context.Context, token string) (domain.Subscriber, error) {
	if token == "" {
		return domain.Subscriber{}, fmt.Errorf("empty token: %w", domain.ErrNotFound)
	}
	return s.subs.ConfirmByToken(ctx, token, time.Now().UTC())
}

// sendConfirmation delivers the opt-in email. Failures are logged, not
// surfaced: the subscriber row exists and a later attempt can re-send.
func (s *Subscriptions) sendConfirmation(ctx context.Context, sub domain.Subscriber) {
	if s.mail == nil || !s.doubleOptIn {
		return
	}

	err := s.mail.Send(ctx, mailer.SendParams{
		To:       sub.Email,
		Template: "confirm.md",
		Data: map[string]string{
			"Email":      sub.Email,
			"ConfirmURL": s.siteURL + "/api/newsletter/confirm?token=" + sub.ConfirmationToken,
		},
	})
	if err != nil {
		s.log.Error("failed to send confirmation email",
			slog.String("email", sub.Email),
			slog.String("error", err.Error()))
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
