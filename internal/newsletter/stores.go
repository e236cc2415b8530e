package newsletter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mathblog/internal/domain"
)

// SendStore persists send records. Implementations must make Claim an atomic
// conditional update so two concurrent processors can never both dispatch.
type SendStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Send, error)

	// Claim transitions the record to the sending status, but only from
	// pending or scheduled with sent_at unset. Returns false when the record
	// is already claimed, already sent, or dead-lettered.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)

	// Release returns a claimed record to pending and increments its attempt
	// counter, keeping it retryable after a failed pass.
	Release(ctx context.Context, id uuid.UUID) error

	// MarkSent commits the terminal state: status sent, sent_at set.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkFailed dead-letters a scheduled record that exhausted its retries.
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// ListDue returns ids of unsent scheduled records whose scheduled time
	// has passed, excluding claimed and dead-lettered ones.
	ListDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// PostStore provides read access to posts for post-derived sends.
type PostStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Post, error)
}

// SubscriberStore provides the recipient universe for a send.
type SubscriberStore interface {
	// ConfirmedEmails returns addresses of subscribers with verified opt-in.
	ConfirmedEmails(ctx context.Context) ([]string, error)
}
