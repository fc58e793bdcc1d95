package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"notepad/notepad/client"
	"notepad/notepad/controllers"
	"notepad/notepad/routes"
	"notepad/notepad/sources/psql"
	"notepad/notepad/sources/psql/dao"
	"notepad/notepad/utils/color"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSession(t *testing.T, script string) (*session, *bytes.Buffer, *bufio.Scanner, *client.API) {
	t.Helper()
	color.Disable()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	db := &psql.Database{DB: gdb}
	require.NoError(t, db.Migrate(t.Context()))

	pages := controllers.NewPagesController(dao.NewPageDAO(gdb), nil, nil)
	srv := httptest.NewServer(routes.NewRouter(routes.Dependencies{
		Pages:  pages,
		Export: controllers.NewExportController(pages, nil),
		Health: controllers.NewHealthController(db),
	}))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})

	var out bytes.Buffer
	in := bufio.NewScanner(strings.NewReader(script))
	term := newTerminal(&out, in)
	api := client.NewAPI(srv.URL)
	return &session{ctrl: client.NewController(api, term, term), term: term}, &out, in, api
}

func TestSessionWritesNote(t *testing.T) {
	script := strings.Join([]string{
		"new",
		"title Groceries",
		"append - milk",
		`append - eggs\n- bread`,
		"save",
		"show",
		"quit",
		"ls",
	}, "\n")
	s, out, in, api := newSession(t, script)

	s.run(context.Background(), in)

	list, err := api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	page, err := api.Get(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", page.Title)
	assert.Equal(t, "- milk\n- eggs\n- bread", page.Content)

	text := out.String()
	assert.Contains(t, text, "New note created")
	assert.Contains(t, text, "Note saved successfully")
	assert.Contains(t, text, "Groceries\n- milk\n- eggs\n- bread\n")
	assert.True(t, in.Scan(), "input after quit is left unread")
}

func TestSessionDeleteAsksFirst(t *testing.T) {
	s, out, in, api := newSession(t, "new\nrm\nn\nrm\ny\nquit\n")

	s.run(context.Background(), in)

	list, err := api.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 2, strings.Count(out.String(), "Are you sure you want to delete this note? [y/N]"))
	assert.Equal(t, 1, strings.Count(out.String(), "Note deleted"))
	assert.Zero(t, s.ctrl.CurrentID())
}

func TestSessionRejectsBadInput(t *testing.T) {
	s, out, in, _ := newSession(t, "title nothing open\nopen abc\nopen 0\nrm\nfrobnicate\nopen 42\n")

	s.run(context.Background(), in)

	text := out.String()
	assert.Contains(t, text, "No note is open; use open <id> or new")
	assert.Contains(t, text, `Not a note id: "abc"`)
	assert.Contains(t, text, `Not a note id: "0"`)
	assert.Contains(t, text, "No note is open; use rm <id>")
	assert.Contains(t, text, `Unknown command "frobnicate"`)
	assert.Contains(t, text, "Error loading page")
}

func TestTerminalRenderList(t *testing.T) {
	s, out, in, api := newSession(t, "ls\n")
	_, err := api.Create(context.Background(), "First", "")
	require.NoError(t, err)
	second, err := api.Create(context.Background(), "Second", "")
	require.NoError(t, err)
	require.NoError(t, s.ctrl.SelectPage(context.Background(), second.ID))
	out.Reset()

	s.run(context.Background(), in)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var listed []string
	for _, l := range lines {
		if strings.Contains(l, "#") {
			listed = append(listed, l)
		}
	}
	require.Len(t, listed, 2)
	assert.Contains(t, listed[0], "Second")
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(listed[0], "notepad> "), ">"), listed[0])
	assert.Contains(t, listed[1], "First")
}
