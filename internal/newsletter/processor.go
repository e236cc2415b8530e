package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"mathblog/internal/domain"
	"mathblog/pkg/mailer"
)

// Result reports the outcome of one successful processing pass.
type Result struct {
	SendID         uuid.UUID
	RecipientCount int

	// AlreadySent means the record was terminal before this pass; nothing
	// was dispatched.
	AlreadySent bool

	// UsedTestFallback means the configured test recipient substituted for
	// the filtered-out subscriber list.
	UsedTestFallback bool
}

// Processor runs the send state machine: claim, resolve content and
// recipients, dispatch in bounded batches, commit the terminal state.
type Processor struct {
	sends    SendStore
	posts    PostStore
	subs     SubscriberStore
	sender   mailer.BatchSender
	content  *ContentBuilder
	resolver *Resolver
	cfg      Config
	log      *slog.Logger
}

// NewProcessor wires the send processor. All collaborators are required.
func NewProcessor(
	sends SendStore,
	posts PostStore,
	subs SubscriberStore,
	sender mailer.BatchSender,
	content *ContentBuilder,
	cfg Config,
	log *slog.Logger,
) *Processor {
	cfg = cfg.withDefaults()
	return &Processor{
		sends:    sends,
		posts:    posts,
		subs:     subs,
		sender:   sender,
		content:  content,
		resolver: NewResolver(cfg),
		cfg:      cfg,
		log:      log,
	}
}

// Process dispatches one send record. Terminal records are an idempotent
// no-op success. A failed pass releases the claim so the record stays
// retryable; delivery is at-least-once, a retry resends to all recipients.
func (p *Processor) Process(ctx context.Context, id uuid.UUID) (Result, error) {
	send, err := p.sends.Get(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("load send %s: %w", id, err)
	}
	if send.Terminal() {
		return Result{SendID: id, AlreadySent: true}, nil
	}

	claimed, err := p.sends.Claim(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("claim send %s: %w", id, err)
	}
	if !claimed {
		return Result{}, ErrAlreadyProcessing
	}

	result, err := p.dispatch(ctx, send)
	if err != nil {
		if relErr := p.sends.Release(ctx, id); relErr != nil {
			p.log.Error("failed to release claimed send",
				slog.String("send_id", id.String()),
				slog.String("error", relErr.Error()))
		}
		return Result{}, err
	}
	return result, nil
}

func (p *Processor) dispatch(ctx context.Context, send domain.Send) (Result, error) {
	content, err := p.resolveContent(ctx, send)
	if err != nil {
		return Result{}, err
	}

	confirmed, err := p.subs.ConfirmedEmails(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load subscribers: %w", err)
	}

	resolution, err := p.resolver.Resolve(confirmed)
	if err != nil {
		return Result{}, err
	}

	if len(resolution.Recipients) == 0 {
		// Zero confirmed subscribers: a deliberate nothing-to-do terminal
		// state, not a failure. The provider is never called.
		if err := p.sends.MarkSent(ctx, send.ID, time.Now().UTC()); err != nil {
			return Result{}, fmt.Errorf("mark send %s sent: %w", send.ID, err)
		}
		p.log.Info("newsletter send completed with no recipients",
			slog.String("send_id", send.ID.String()))
		return Result{SendID: send.ID}, nil
	}

	for batch := range slices.Chunk(resolution.Recipients, p.cfg.BatchSize) {
		emails := make([]*mailer.Email, len(batch))
		for i, to := range batch {
			emails[i] = &mailer.Email{
				From:    p.cfg.From,
				To:      []string{to},
				Subject: content.Subject,
				HTML:    content.HTML,
			}
		}

		// A timeout is a batch failure: abort remaining batches, keep the
		// record retryable.
		batchCtx, cancel := context.WithTimeout(ctx, p.cfg.BatchTimeout)
		err := p.sender.SendBatch(batchCtx, emails)
		cancel()
		if err != nil {
			// Missing credentials are a configuration error, not a provider
			// failure.
			if errors.Is(err, mailer.ErrNotConfigured) {
				return Result{}, fmt.Errorf("deliver send %s: %w", send.ID, err)
			}
			return Result{}, errors.Join(ErrDelivery, err)
		}
	}

	if err := p.sends.MarkSent(ctx, send.ID, time.Now().UTC()); err != nil {
		return Result{}, fmt.Errorf("mark send %s sent: %w", send.ID, err)
	}

	p.log.Info("newsletter send completed",
		slog.String("send_id", send.ID.String()),
		slog.Int("recipients", len(resolution.Recipients)),
		slog.Bool("test_fallback", resolution.UsedFallback))

	return Result{
		SendID:           send.ID,
		RecipientCount:   len(resolution.Recipients),
		UsedTestFallback: resolution.UsedFallback,
	}, nil
}

// resolveContent builds the subject and body: live from the referenced post,
// or from the stored custom body.
func (p *Processor) resolveContent(ctx context.Context, send domain.Send) (Content, error) {
	if send.PostDerived() {
		post, err := p.posts.Get(ctx, *send.PostID)
		if err != nil {
			return Content{}, fmt.Errorf("load post %s: %w", send.PostID, err)
		}
		return p.content.BuildForPost(post)
	}

	switch {
	case send.BodyHTML != nil && *send.BodyHTML != "":
		return Content{Subject: send.Subject, HTML: *send.BodyHTML}, nil
	case send.BodyText != nil && *send.BodyText != "":
		return p.content.BuildCustom(send.Subject, *send.BodyText, false)
	default:
		return Content{}, ErrEmptyBody
	}
}
