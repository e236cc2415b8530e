package newsletter

import "time"

// Config carries every knob the pipeline needs. It is constructed once at
// startup and passed by reference; core logic never reads the environment.
type Config struct {
	// SiteURL is the canonical base URL used for post links and the
	// subscription confirmation link.
	SiteURL string

	// From is the sender address in RFC 5322 form ("Name <addr@domain>").
	From string

	// TestRecipient substitutes for the recipient set when every confirmed
	// subscriber was filtered out by the disallow-list. Empty disables the
	// substitution.
	TestRecipient string

	// DisallowedDomains are recipient domains the delivery provider rejects
	// for sandboxed senders. Defaults to DefaultDisallowedDomains.
	DisallowedDomains []string

	// SandboxDomains are sender domains reserved by the provider for
	// non-production testing. A sandboxed sender may only deliver to its own
	// domain. Defaults to DefaultSandboxDomains.
	SandboxDomains []string

	// BatchSize bounds one delivery-provider request. Defaults to 100.
	BatchSize int

	// BatchTimeout bounds one batch submission; a timeout is a batch failure.
	// Defaults to 30s.
	BatchTimeout time.Duration

	// MaxAttempts bounds scheduled-send retries before the record moves to
	// the failed (dead-letter) status. Defaults to 3.
	MaxAttempts int
}

// DefaultDisallowedDomains are recipient domains hosted providers reject when
// sending from a sandboxed address. This models provider-side acceptance
// constraints, not business policy.
var DefaultDisallowedDomains = []string{
	"example.com", "example.org", "example.net", "test.com", "localhost",
}

// DefaultSandboxDomains are sender domains the provider reserves for testing.
var DefaultSandboxDomains = []string{"resend.dev"}

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = 30 * time.Second
	defaultMaxAttempts  = 3
)

func (c Config) withDefaults() Config {
	if c.DisallowedDomains == nil {
		c.DisallowedDomains = DefaultDisallowedDomains
	}
	if c.SandboxDomains == nil {
		c.SandboxDomains = DefaultSandboxDomains
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = defaultBatchTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	return c
}
