package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notepad/notepad/client"
	"notepad/notepad/controllers"
	"notepad/notepad/routes"
	"notepad/notepad/services/events"
	"notepad/notepad/sources/psql"
	"notepad/notepad/sources/psql/dao"
	"notepad/notepad/sources/psql/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServer(t *testing.T) (*httptest.Server, *events.Hub) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	db := &psql.Database{DB: gdb}
	require.NoError(t, db.Migrate(t.Context()))

	hub := events.NewHub(nil)
	pages := controllers.NewPagesController(dao.NewPageDAO(gdb), hub, nil)
	srv := httptest.NewServer(routes.NewRouter(routes.Dependencies{
		Pages:       pages,
		Export:      controllers.NewExportController(pages, nil),
		Health:      controllers.NewHealthController(db),
		Events:      hub,
		CORSOrigins: []string{"*"},
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		db.Close()
	})
	return srv, hub
}

func TestAPIRoundTrip(t *testing.T) {
	srv, _ := newServer(t)
	api := client.NewAPI(srv.URL + "/")
	ctx := context.Background()

	created, err := api.Create(ctx, "Shopping", "- milk")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := api.Update(ctx, created.ID, "Shopping", "- milk\n- eggs")
	require.NoError(t, err)
	assert.Equal(t, "- milk\n- eggs", updated.Content)

	list, err := api.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Shopping", list[0].Title)

	require.NoError(t, api.Delete(ctx, created.ID))

	_, err = api.Get(ctx, created.ID)
	var httpErr *client.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.Code)
	assert.Equal(t, "Page not found", httpErr.Message)
}

func TestAPIListEmpty(t *testing.T) {
	srv, _ := newServer(t)

	list, err := client.NewAPI(srv.URL).List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWatchReceivesChanges(t *testing.T) {
	srv, hub := newServer(t)
	api := client.NewAPI(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan events.Event, 4)
	go api.Watch(ctx, func(evt events.Event) { received <- evt })
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	page, err := api.Create(ctx, "Broadcast", "")
	require.NoError(t, err)

	select {
	case evt := <-received:
		assert.Equal(t, events.PageCreated, evt.Type)
		assert.Equal(t, page.ID, evt.Page.ID)
		assert.Equal(t, "Broadcast", evt.Page.Title)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

type silentView struct{ titles []string }

func (v *silentView) RenderList(pages []models.PageSummary, currentID uint) {
	v.titles = v.titles[:0]
	for _, p := range pages {
		v.titles = append(v.titles, p.Title)
	}
}
func (v *silentView) SetFields(title, content string) {}
func (v *silentView) ShowEditor() {}
func (v *silentView) ShowEmpty() {}
func (v *silentView) FocusTitle() {}
func (v *silentView) RenderPreview(markdown string) {}
func (v *silentView) SetPreviewMode(on bool) {}
func (v *silentView) ShowStatus(s client.Status) {}
func (v *silentView) ClearStatus() {}
func (v *silentView) Confirm(question string) bool { return true }

func TestControllerAgainstServer(t *testing.T) {
	srv, _ := newServer(t)
	view := &silentView{}
	ctrl := client.NewController(client.NewAPI(srv.URL), view, view)
	ctx := context.Background()

	require.NoError(t, ctrl.LoadPages(ctx))
	require.NoError(t, ctrl.AddPage(ctx))
	id := ctrl.CurrentID()
	require.NotZero(t, id)

	ctrl.SetTitle("<b>Bold</b>")
	ctrl.SetContent("body")
	require.NoError(t, ctrl.SavePage(ctx))
	assert.Equal(t, []string{"<b>Bold</b>"}, view.titles)

	require.NoError(t, ctrl.DeletePage(ctx, id))
	assert.Empty(t, ctrl.Pages())
	assert.Zero(t, ctrl.CurrentID())
}
