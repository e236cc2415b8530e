package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  *bluemonday.Policy
	commentPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Comment bodies allow minimal inline formatting. No links: comment
		// spam is almost always link spam.
		commentPolicy = bluemonday.NewPolicy()
		commentPolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"code", "pre", "blockquote",
		)
	})
}

// StripHTML removes all markup, returning plain text. Used for fields that
// must never contain HTML, like author names.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeComment keeps minimal inline formatting and strips everything
// dangerous: scripts, event handlers, links, and embedded content.
func SanitizeComment(s string) string {
	initPolicies()
	return commentPolicy.Sanitize(s)
}
