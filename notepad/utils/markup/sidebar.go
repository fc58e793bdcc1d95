// Package markup renders page data as HTML shared by the server and the
// browser client.
package markup

import (
	"fmt"
	"strings"

	"notepad/notepad/sources/psql/models"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML makes a user-supplied string safe to place in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SidebarHTML renders the page list with the same markup app.js builds,
// so the server can send a pre-filled sidebar.
func SidebarHTML(pages []models.PageSummary, currentID uint) string {
	var b strings.Builder
	for _, p := range pages {
		class := "page-item"
		if p.ID == currentID {
			class += " active"
		}
		fmt.Fprintf(&b, `<div class="%s" data-id="%d">`, class, p.ID)
		fmt.Fprintf(&b, `<span class="page-title"><i data-lucide="file-text"></i> %s</span>`, EscapeHTML(p.Title))
		b.WriteString(`<button class="delete-btn" title="Delete note"><i data-lucide="trash-2"></i></button>`)
		b.WriteString("</div>\n")
	}
	return b.String()
}
