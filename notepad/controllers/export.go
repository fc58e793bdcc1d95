// notepad/controllers/export.go
package controllers

import (
	"context"
	"fmt"

	"notepad/notepad/sources/psql/models"
	"notepad/notepad/sources/storage"
	"notepad/notepad/utils/logging"
	"notepad/notepad/utils/markdown"

	"github.com/google/uuid"
)

// ObjectStore keeps archived exports. *storage.MinIOClient implements it.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type ArchiveResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type ExportController struct {
	pages   *PagesController
	archive ObjectStore
}

// NewExportController accepts a nil archive; Archive then reports
// storage.ErrNotConfigured.
func NewExportController(pages *PagesController, archive ObjectStore) *ExportController {
	return &ExportController{pages: pages, archive: archive}
}

func (c *ExportController) Export(ctx context.Context, id uint) (*models.Page, []byte, error) {
	page, err := c.pages.GetPage(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := markdown.Export(page)
	if err != nil {
		return nil, nil, err
	}
	return page, doc, nil
}

// Archive stores a fresh export under pages/<id>/<uuid>.md.
func (c *ExportController) Archive(ctx context.Context, id uint) (*ArchiveResult, error) {
	defer logging.LogDuration(ctx, "ExportController.Archive")()
	if c.archive == nil {
		return nil, storage.ErrNotConfigured
	}
	_, doc, err := c.Export(ctx, id)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("pages/%d/%s.md", id, uuid.New().String())
	if err := c.archive.Put(ctx, key, doc, "text/markdown; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("archive page %d: %w", id, err)
	}
	return &ArchiveResult{Bucket: c.archive.Bucket(), Key: key}, nil
}
