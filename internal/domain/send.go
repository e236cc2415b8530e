package domain

import (
	"time"

	"github.com/google/uuid"
)

// SendStatus tracks a newsletter send through its lifecycle. SentAt remains
// the terminal marker; the status column exists so a processor can claim a
// record atomically before dispatching anything.
type SendStatus string

const (
	// SendStatusPending marks a send that is actionable now.
	SendStatusPending SendStatus = "pending"
	// SendStatusScheduled marks a send whose scheduled time is still in the future.
	SendStatusScheduled SendStatus = "scheduled"
	// SendStatusSending marks a send claimed by an in-flight processing pass.
	SendStatusSending SendStatus = "sending"
	// SendStatusSent is terminal: SentAt is set and reprocessing is a no-op.
	SendStatusSent SendStatus = "sent"
	// SendStatusFailed is the dead-letter state for scheduled sends that
	// exhausted their retry budget.
	SendStatusFailed SendStatus = "failed"
)

// Send is one newsletter dispatch, immediate or scheduled, post-derived or
// custom. Exactly one of PostID and the inline body determines content.
type Send struct {
	ID          uuid.UUID  `json:"id"`
	Subject     string     `json:"subject"`
	BodyHTML    *string    `json:"body_html,omitempty"`
	BodyText    *string    `json:"body_text,omitempty"`
	PostID      *uuid.UUID `json:"post_id,omitempty"`
	Status      SendStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Terminal reports whether the send has already been dispatched. Once true
// the record is immutable and any further processing is a no-op.
func (s Send) Terminal() bool {
	return s.SentAt != nil
}

// PostDerived reports whether content is built live from a referenced post
// at send time rather than from the stored body.
func (s Send) PostDerived() bool {
	return s.PostID != nil
}
