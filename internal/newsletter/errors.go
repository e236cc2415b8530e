package newsletter

import "errors"

var (
	// ErrAlreadyProcessing indicates another pass holds the claim on the
	// send record; nothing was dispatched.
	ErrAlreadyProcessing = errors.New("newsletter: send is already being processed")

	// ErrEmptyBody indicates a custom send record carries no content.
	ErrEmptyBody = errors.New("newsletter: custom send has no body")

	// ErrNoDeliverableRecipients is a configuration error: confirmed
	// subscribers exist, but every address sits on a domain the provider
	// rejects and no test recipient is configured. The record stays
	// retryable.
	ErrNoDeliverableRecipients = errors.New(
		"newsletter: all confirmed subscribers use domains the delivery provider rejects; " +
			"configure a test recipient or add real subscriber addresses")

	// ErrSandboxSender is a configuration error: the sender address belongs
	// to a provider sandbox domain while the recipient list reaches outside
	// it. The provider would reject the send, so fail fast.
	ErrSandboxSender = errors.New(
		"newsletter: sandbox sender can only deliver to addresses on its own domain; " +
			"verify a domain with the provider and update the sender address")

	// ErrDelivery wraps a batch-level provider failure. Remaining batches
	// were aborted and the record stays retryable.
	ErrDelivery = errors.New("newsletter: delivery provider rejected a batch")
)
