// Package templates embeds the transactional email templates.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed emails
var emailsFS embed.FS

// Emails returns the email template filesystem for the mailer renderer.
// Templates live at the root, layouts under layouts/.
func Emails() fs.FS {
	sub, err := fs.Sub(emailsFS, "emails")
	if err != nil {
		panic(err)
	}
	return sub
}
