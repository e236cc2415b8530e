// Package mailer provides email sending behind provider-agnostic interfaces.
//
// Sender delivers a single prepared Email; BatchSender submits a bounded
// group of messages in one provider call, which the newsletter pipeline uses
// for fan-out. Renderer turns Markdown templates with YAML frontmatter into
// HTML for transactional messages like subscription confirmations.
//
// Provider adapters live in subpackages (see resend).
package mailer
