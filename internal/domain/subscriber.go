package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter recipient. ConfirmedAt == nil means the opt-in
// has not been verified and the address is excluded from sends.
type Subscriber struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	ConfirmationToken string     `json:"-"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Confirmed reports whether the subscriber completed opt-in.
func (s Subscriber) Confirmed() bool {
	return s.ConfirmedAt != nil
}
