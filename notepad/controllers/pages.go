// notepad/controllers/pages.go
package controllers

import (
	"context"
	"errors"

	"notepad/notepad/services/events"
	"notepad/notepad/services/metrics"
	"notepad/notepad/sources/psql/dao"
	"notepad/notepad/sources/psql/models"
	"notepad/notepad/utils/logging"
)

// DefaultTitle replaces an empty title when a page is created.
const DefaultTitle = "Untitled"

var ErrPageNotFound = errors.New("page not found")

// Publisher receives page change events. *events.Hub implements it.
type Publisher interface {
	Publish(evt events.Event)
}

type PagesController struct {
	store     dao.PageStore
	publisher Publisher
	metrics   *metrics.Collector
}

func NewPagesController(store dao.PageStore, publisher Publisher, collector *metrics.Collector) *PagesController {
	return &PagesController{store: store, publisher: publisher, metrics: collector}
}

func (c *PagesController) ListPages(ctx context.Context) ([]models.PageSummary, error) {
	defer logging.LogDuration(ctx, "PagesController.ListPages")()
	return c.store.ListSummaries(ctx)
}

func (c *PagesController) GetPage(ctx context.Context, id uint) (*models.Page, error) {
	defer logging.LogDuration(ctx, "PagesController.GetPage")()
	page, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// CreatePage inserts a page, substituting defaults for empty fields.
func (c *PagesController) CreatePage(ctx context.Context, title, content string) (*models.Page, error) {
	defer logging.LogDuration(ctx, "PagesController.CreatePage")()
	if title == "" {
		title = DefaultTitle
	}
	page := &models.Page{Title: title, Content: content}
	if err := c.store.Save(ctx, page); err != nil {
		return nil, err
	}
	c.metrics.PageCreated()
	c.publish(events.PageCreated, page)
	return page, nil
}

// UpdatePage overwrites title and content exactly as given.
func (c *PagesController) UpdatePage(ctx context.Context, id uint, title, content string) (*models.Page, error) {
	defer logging.LogDuration(ctx, "PagesController.UpdatePage")()
	page := &models.Page{ID: id, Title: title, Content: content}
	if err := c.store.Save(ctx, page); err != nil {
		if errors.Is(err, dao.ErrPageNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	c.metrics.PageUpdated()
	c.publish(events.PageUpdated, page)
	return page, nil
}

func (c *PagesController) DeletePage(ctx context.Context, id uint) error {
	defer logging.LogDuration(ctx, "PagesController.DeletePage")()
	deleted, err := c.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPageNotFound
	}
	c.metrics.PageDeleted()
	c.publish(events.PageDeleted, &models.Page{ID: id})
	return nil
}

func (c *PagesController) publish(kind string, page *models.Page) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(events.Event{Type: kind, Page: page.Summary()})
}
