// notepad/client/controller.go
package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"notepad/notepad/sources/psql/models"

	"go.uber.org/zap"
)

const (
	PlaceholderTitle = "Untitled Note"
	AutoSaveDelay    = 2 * time.Second
	StatusDuration   = 3 * time.Second
	DeleteQuestion   = "Are you sure you want to delete this note?"

	autoSaveTimeout = 30 * time.Second
)

// ErrStale is returned when a response arrived after the user moved on; the
// response has been discarded.
var ErrStale = errors.New("response superseded by a newer request")

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns the client state: the page list, the selection, the
// editor buffers and the preview flag. All changes go through its methods.
type Controller struct {
	api     PageAPI
	view    View
	confirm Confirmer
	clock   Clock
	logger  *zap.Logger

	mu        sync.Mutex
	pages     []models.PageSummary
	currentID uint
	preview   bool
	title     string
	content   string

	// fetch generation for SelectPage/RefreshPage
	gen    uint64
	cancel context.CancelFunc

	autoSave    Timer
	autoSaveSeq uint64

	status      *Status
	statusTimer Timer
	statusSeq   uint64
}

func NewController(api PageAPI, view View, confirm Confirmer, opts ...Option) *Controller {
	c := &Controller{
		api:     api,
		view:    view,
		confirm: confirm,
		clock:   realClock{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Pages() []models.PageSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.PageSummary(nil), c.pages...)
}

func (c *Controller) CurrentID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

func (c *Controller) PreviewMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

func (c *Controller) Fields() (title, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title, c.content
}

// Status is the visible status message, or nil once it has been dismissed.
func (c *Controller) Status() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return nil
	}
	s := *c.status
	return &s
}

func (c *Controller) LoadPages(ctx context.Context) error {
	pages, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("Error loading pages", err)
		return err
	}
	c.pages = pages
	c.view.RenderList(c.pages, c.currentID)
	return nil
}

func (c *Controller) SelectPage(ctx context.Context, id uint) error {
	ctx, gen, done := c.beginFetch(ctx)
	defer done()

	page, err := c.api.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStale
	}
	if err != nil {
		c.failLocked("Error loading page", err)
		return err
	}

	c.stopAutoSaveLocked()
	c.currentID = page.ID
	c.title, c.content = page.Title, page.Content
	c.view.SetFields(c.title, c.content)
	c.view.ShowEditor()
	if c.preview {
		c.preview = false
		c.view.SetPreviewMode(false)
	}
	c.view.RenderList(c.pages, c.currentID)
	return nil
}

func (c *Controller) AddPage(ctx context.Context) error {
	page, err := c.api.Create(ctx, PlaceholderTitle, "")
	if err != nil {
		c.mu.Lock()
		c.failLocked("Error creating note", err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.pages = append([]models.PageSummary{page.Summary()}, c.pages...)
	c.view.RenderList(c.pages, c.currentID)
	c.showStatusLocked("New note created", StatusSuccess)
	c.mu.Unlock()

	if err := c.SelectPage(ctx, page.ID); err != nil {
		return err
	}

	c.mu.Lock()
	if c.currentID == page.ID {
		c.view.FocusTitle()
	}
	c.mu.Unlock()
	return nil
}

// SavePage writes the editor buffers to the selected page. The title is
// trimmed and falls back to the placeholder; content is sent verbatim.
func (c *Controller) SavePage(ctx context.Context) error {
	c.mu.Lock()
	if c.currentID == 0 {
		c.mu.Unlock()
		return nil
	}
	c.stopAutoSaveLocked()
	id := c.currentID
	title := strings.TrimSpace(c.title)
	if title == "" {
		title = PlaceholderTitle
	}
	content := c.content
	c.mu.Unlock()

	page, err := c.api.Update(ctx, id, title, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("Error saving note", err)
		return err
	}
	for i := range c.pages {
		if c.pages[i].ID == id {
			c.pages[i] = page.Summary()
			c.view.RenderList(c.pages, c.currentID)
			break
		}
	}
	c.showStatusLocked("Note saved successfully", StatusSuccess)
	return nil
}

// RefreshPage reloads the selected page, discarding unsaved edits.
func (c *Controller) RefreshPage(ctx context.Context) error {
	c.mu.Lock()
	id := c.currentID
	c.mu.Unlock()
	if id == 0 {
		return nil
	}

	ctx, gen, done := c.beginFetch(ctx)
	defer done()

	page, err := c.api.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.currentID != id {
		return ErrStale
	}
	if err != nil {
		c.failLocked("Error refreshing note", err)
		return err
	}

	c.stopAutoSaveLocked()
	c.title, c.content = page.Title, page.Content
	c.view.SetFields(c.title, c.content)
	if c.preview {
		c.view.RenderPreview(c.content)
	}
	c.showStatusLocked("Note refreshed", StatusSuccess)
	return nil
}

// DeletePage asks for confirmation first; declining sends nothing.
func (c *Controller) DeletePage(ctx context.Context, id uint) error {
	if !c.confirm.Confirm(DeleteQuestion) {
		return nil
	}

	err := c.api.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("Error deleting note", err)
		return err
	}

	kept := make([]models.PageSummary, 0, len(c.pages))
	for _, p := range c.pages {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.pages = kept

	if c.currentID == id {
		c.stopAutoSaveLocked()
		c.invalidateFetchLocked()
		c.currentID = 0
		c.title, c.content = "", ""
		c.view.ShowEmpty()
	}
	c.view.RenderList(c.pages, c.currentID)
	c.showStatusLocked("Note deleted", StatusSuccess)
	return nil
}

// TogglePreview only changes what is shown; nothing is saved.
func (c *Controller) TogglePreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = !c.preview
	if c.preview {
		c.view.RenderPreview(c.content)
	}
	c.view.SetPreviewMode(c.preview)
}

func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	c.editedLocked()
}

func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
	c.editedLocked()
}

// HandleShortcut runs the action bound to Ctrl/Cmd+key and reports whether
// the key is bound, i.e. whether default handling should be suppressed.
func (c *Controller) HandleShortcut(ctx context.Context, key string) bool {
	selected := c.CurrentID() != 0
	switch strings.ToLower(key) {
	case "s":
		if selected {
			c.SavePage(ctx)
		}
		return true
	case "n":
		c.AddPage(ctx)
		return true
	case "p":
		if selected {
			c.TogglePreview()
		}
		return true
	default:
		return false
	}
}

// editedLocked restarts the auto-save countdown.
func (c *Controller) editedLocked() {
	if c.currentID == 0 {
		return
	}
	c.stopAutoSaveLocked()
	seq := c.autoSaveSeq
	c.autoSave = c.clock.AfterFunc(AutoSaveDelay, func() {
		c.mu.Lock()
		current := seq == c.autoSaveSeq
		c.mu.Unlock()
		if !current {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), autoSaveTimeout)
		defer cancel()
		c.SavePage(ctx)
	})
}

func (c *Controller) stopAutoSaveLocked() {
	c.autoSaveSeq++
	if c.autoSave != nil {
		c.autoSave.Stop()
		c.autoSave = nil
	}
}

// beginFetch cancels the previous selection fetch and starts a new generation.
func (c *Controller) beginFetch(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateFetchLocked()
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return ctx, c.gen, cancel
}

func (c *Controller) invalidateFetchLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}

func (c *Controller) failLocked(message string, err error) {
	c.logger.Error(message, zap.Error(err))
	c.showStatusLocked(message, StatusError)
}

func (c *Controller) showStatusLocked(message string, kind StatusKind) {
	c.status = &Status{Message: message, Kind: kind}
	c.view.ShowStatus(*c.status)

	if c.statusTimer != nil {
		c.statusTimer.Stop()
	}
	c.statusSeq++
	seq := c.statusSeq
	c.statusTimer = c.clock.AfterFunc(StatusDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.statusSeq {
			return
		}
		c.status = nil
		c.statusTimer = nil
		c.view.ClearStatus()
	})
}
