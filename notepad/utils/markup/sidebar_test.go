package markup

import (
	"strings"
	"testing"

	"notepad/notepad/sources/psql/models"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{`Tom & "Jerry"`, "Tom &amp; &quot;Jerry&quot;"},
		{"it's", "it&#039;s"},
		{"&amp;", "&amp;amp;"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeHTML(tt.in), tt.in)
	}
}

func TestSidebarHTML(t *testing.T) {
	pages := []models.PageSummary{
		{ID: 2, Title: "<img src=x onerror=alert(1)>"},
		{ID: 1, Title: "Groceries"},
	}

	html := SidebarHTML(pages, 1)

	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;img src=x onerror=alert(1)&gt;")
	assert.Contains(t, html, `<div class="page-item" data-id="2">`)
	assert.Contains(t, html, `<div class="page-item active" data-id="1">`)
	assert.Equal(t, 2, strings.Count(html, `class="delete-btn"`))
	assert.Less(t, strings.Index(html, `data-id="2"`), strings.Index(html, `data-id="1"`), "keeps list order")
}

func TestSidebarHTMLEmpty(t *testing.T) {
	assert.Empty(t, SidebarHTML(nil, 0))
}
