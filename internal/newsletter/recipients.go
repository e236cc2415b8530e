package newsletter

import (
	"slices"
	"strings"
)

// Resolution is the outcome of recipient resolution for one send attempt.
type Resolution struct {
	// Recipients is the final destination list. Empty means a legitimate
	// no-op send (zero confirmed subscribers existed).
	Recipients []string

	// UsedFallback reports that every confirmed subscriber was filtered out
	// and the configured test recipient was substituted.
	UsedFallback bool
}

// Resolver applies confirmation and provider-acceptance policy to produce the
// recipient set for one dispatch attempt.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver for the given configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg.withDefaults()}
}

// Resolve filters the confirmed subscriber addresses down to deliverable
// recipients, in policy order: disallow-list filtering, test-recipient
// substitution, then the sandbox-sender guard. It distinguishes a legitimate
// empty set (no confirmed subscribers at all) from the configuration error
// where confirmed subscribers existed but none survived filtering.
func (r *Resolver) Resolve(confirmed []string) (Resolution, error) {
	allowed := make([]string, 0, len(confirmed))
	for _, email := range confirmed {
		if r.allowedRecipient(email) {
			allowed = append(allowed, email)
		}
	}

	res := Resolution{Recipients: allowed}
	if len(allowed) == 0 {
		switch {
		case len(confirmed) == 0:
			// Zero confirmed subscribers is a legitimate empty list, never a
			// fallback case.
			return Resolution{}, nil
		case r.cfg.TestRecipient != "":
			res = Resolution{Recipients: []string{r.cfg.TestRecipient}, UsedFallback: true}
		default:
			// Subscribers exist but every address was filtered: this is a
			// deployment problem, not an empty list.
			return Resolution{}, ErrNoDeliverableRecipients
		}
	}

	if sandbox := r.senderSandboxDomain(); sandbox != "" {
		for _, email := range res.Recipients {
			if !strings.EqualFold(emailDomain(email), sandbox) {
				return Resolution{}, ErrSandboxSender
			}
		}
	}

	return res, nil
}

func (r *Resolver) allowedRecipient(email string) bool {
	domain := emailDomain(email)
	if domain == "" {
		return false
	}
	return !slices.ContainsFunc(r.cfg.DisallowedDomains, func(d string) bool {
		return strings.EqualFold(d, domain)
	})
}

// senderSandboxDomain returns the sandbox domain the configured sender
// belongs to, or "" for production senders.
func (r *Resolver) senderSandboxDomain() string {
	domain := emailDomain(senderAddress(r.cfg.From))
	for _, sandbox := range r.cfg.SandboxDomains {
		if strings.EqualFold(domain, sandbox) {
			return sandbox
		}
	}
	return ""
}

// senderAddress extracts the bare address from RFC 5322 "Name <addr>" form.
func senderAddress(from string) string {
	if open := strings.LastIndexByte(from, '<'); open != -1 {
		if close := strings.IndexByte(from[open:], '>'); close != -1 {
			return from[open+1 : open+close]
		}
	}
	return strings.TrimSpace(from)
}

func emailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at == -1 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
