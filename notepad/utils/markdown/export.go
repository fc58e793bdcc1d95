// Package markdown writes pages as standalone Markdown documents.
package markdown

import (
	"bytes"
	"fmt"
	"time"

	"notepad/notepad/sources/psql/models"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	ID        uint      `yaml:"id"`
	Title     string    `yaml:"title"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Export renders a page as YAML frontmatter followed by its content.
func Export(page *models.Page) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	fm := frontmatter{ID: page.ID, Title: page.Title, UpdatedAt: page.UpdatedAt.UTC()}
	if err := encoder.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString("---\n\n")
	buf.WriteString(page.Content)
	return buf.Bytes(), nil
}

// Filename is a download name for the page export.
func Filename(page *models.Page) string {
	return fmt.Sprintf("page-%d.md", page.ID)
}
