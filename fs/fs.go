// Package appfs embeds the portal and email templates into the binary.
package appfs

import (
	"embed"
	"io/fs"
)

//go:embed templates
var files embed.FS

// Portal holds the page templates: one layout plus one file per screen.
func Portal() fs.FS {
	sub, _ := fs.Sub(files, "templates/portal")
	return sub
}

// Email holds the email templates: `_base` layouts plus one .txt/.gohtml pair per message.
func Email() fs.FS {
	sub, _ := fs.Sub(files, "templates/email")
	return sub
}
