// Terminal client for a running notepad server
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"notepad/notepad/client"
	"notepad/notepad/config"
	"notepad/notepad/services/events"
	"notepad/notepad/sources/psql/models"
	"notepad/notepad/utils/color"
	"notepad/notepad/utils/logging"

	"go.uber.org/zap"
)

const usage = `Commands:
  ls                 list notes
  open <id>          open a note
  new                create a note and open it
  title <text>       set the title of the open note
  write <text>       replace the content (\n starts a new line)
  append <text>      add a line to the content
  show               print the open note
  save               save now (edits also save 2s after the last change)
  refresh            reload the open note, dropping unsaved edits
  rm [id]            delete a note (default: the open one)
  preview            toggle Markdown preview
  help               show this help
  quit               leave`

func main() {
	cfg := config.LoadConfig()
	serverURL := cfg.ServerURL
	if len(os.Args) > 1 {
		serverURL = os.Args[1]
	}
	if err := logging.InitLogger(cfg.LogDir); err == nil {
		defer logging.Sync()
	}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		color.Disable()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in := bufio.NewScanner(os.Stdin)
	term := newTerminal(os.Stdout, in)
	api := client.NewAPI(serverURL)
	ctrl := client.NewController(api, term, term, client.WithLogger(logging.ErrorLogger))
	s := &session{ctrl: ctrl, term: term}

	fmt.Fprintf(os.Stdout, "\nConnected to %s\n", serverURL)
	fmt.Fprintln(os.Stdout, color.ColorMuted("Type 'help' for commands."))
	ctrl.LoadPages(ctx)
	go watch(ctx, api, ctrl, term)

	s.run(ctx, in)
	fmt.Fprintln(os.Stdout, "Bye!")
}

// watch reloads the list whenever another client changes a page.
func watch(ctx context.Context, api *client.API, ctrl *client.Controller, term *terminal) {
	delay := time.Second
	for ctx.Err() == nil {
		start := time.Now()
		err := api.Watch(ctx, func(evt events.Event) {
			term.notify(evt)
			ctrl.LoadPages(ctx)
		})
		if ctx.Err() != nil {
			return
		}
		logging.ErrorLogger.Error("change feed disconnected", zap.Error(err))
		if time.Since(start) > time.Minute {
			delay = time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, 30*time.Second)
	}
}

type session struct {
	ctrl *client.Controller
	term *terminal
}

func (s *session) run(ctx context.Context, in *bufio.Scanner) {
	for ctx.Err() == nil {
		s.term.printf("%s", color.ColorPrompt("notepad> "))
		if !in.Scan() {
			return
		}
		if s.dispatch(ctx, in.Text()) {
			return
		}
	}
}

// dispatch runs one command line and reports whether the session should end.
// Failed operations are already shown as status lines by the controller.
func (s *session) dispatch(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "ls", "list":
		s.ctrl.LoadPages(ctx)
	case "open":
		id, ok := s.parseID(arg)
		if ok {
			s.ctrl.SelectPage(ctx, id)
		}
	case "new":
		s.ctrl.AddPage(ctx)
	case "title":
		if s.requireOpen() {
			s.ctrl.SetTitle(arg)
		}
	case "write":
		if s.requireOpen() {
			s.ctrl.SetContent(unescape(arg))
		}
	case "append":
		if s.requireOpen() {
			_, content := s.ctrl.Fields()
			if content != "" && !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			s.ctrl.SetContent(content + unescape(arg))
		}
	case "show":
		if s.requireOpen() {
			title, content := s.ctrl.Fields()
			s.term.printNote(title, content)
		}
	case "save":
		if s.requireOpen() {
			s.ctrl.SavePage(ctx)
		}
	case "refresh":
		if s.requireOpen() {
			s.ctrl.RefreshPage(ctx)
		}
	case "rm", "delete":
		id := s.ctrl.CurrentID()
		if arg != "" {
			var ok bool
			if id, ok = s.parseID(arg); !ok {
				return false
			}
		}
		if id == 0 {
			s.term.warn("No note is open; use rm <id>")
			return false
		}
		s.ctrl.DeletePage(ctx, id)
	case "preview":
		if s.requireOpen() {
			s.ctrl.TogglePreview()
		}
	case "help", "?":
		s.term.printf("%s\n", usage)
	case "quit", "exit", "q":
		return true
	default:
		s.term.warn(fmt.Sprintf("Unknown command %q; type 'help'", cmd))
	}
	return false
}

func (s *session) requireOpen() bool {
	if s.ctrl.CurrentID() == 0 {
		s.term.warn("No note is open; use open <id> or new")
		return false
	}
	return true
}

func (s *session) parseID(arg string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id == 0 {
		s.term.warn(fmt.Sprintf("Not a note id: %q", arg))
		return 0, false
	}
	return uint(id), true
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// terminal is a client.View and client.Confirmer that prints to a stream.
// Its methods may run from the auto-save timer and the change feed, so
// output is serialized.
type terminal struct {
	mu    sync.Mutex
	out   io.Writer
	in    *bufio.Scanner
	title string
}

var (
	_ client.View      = (*terminal)(nil)
	_ client.Confirmer = (*terminal)(nil)
)

func newTerminal(out io.Writer, in *bufio.Scanner) *terminal {
	return &terminal{out: out, in: in}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) warn(msg string) {
	t.printf("%s\n", color.ColorWarning(msg))
}

func (t *terminal) notify(evt events.Event) {
	t.printf("%s\n", color.ColorMuted(fmt.Sprintf("[%s] #%d %s", evt.Type, evt.Page.ID, evt.Page.Title)))
}

func (t *terminal) printNote(title, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s\n", color.ColorActive(title))
	if content == "" {
		fmt.Fprintln(t.out, color.ColorMuted("(empty)"))
		return
	}
	fmt.Fprintln(t.out, content)
}

func (t *terminal) RenderList(pages []models.PageSummary, currentID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(pages) == 0 {
		fmt.Fprintln(t.out, color.ColorMuted("No notes yet; create one with 'new'"))
		return
	}
	for _, p := range pages {
		line := fmt.Sprintf("%s #%-4d %s", marker(p.ID == currentID), p.ID, p.Title)
		if p.ID == currentID {
			line = color.ColorActive(line)
		}
		fmt.Fprintf(t.out, "%s  %s\n", line, color.ColorMuted(p.UpdatedAt.Local().Format(time.DateTime)))
	}
}

func marker(active bool) string {
	if active {
		return ">"
	}
	return " "
}

func (t *terminal) SetFields(title, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.title = title
}

func (t *terminal) ShowEditor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Editing %s\n", color.ColorActive(t.title))
}

func (t *terminal) ShowEmpty() {
	t.printf("%s\n", color.ColorMuted("Select a note or create a new one"))
}

func (t *terminal) FocusTitle() {
	t.printf("%s\n", color.ColorMuted("Rename it with: title <text>"))
}

// RenderPreview prints the raw Markdown between rules.
func (t *terminal) RenderPreview(markdown string) {
	rule := color.ColorMuted(strings.Repeat("─", 40))
	t.printf("%s\n%s\n%s\n", rule, markdown, rule)
}

func (t *terminal) SetPreviewMode(on bool) {
	if on {
		t.printf("%s\n", color.ColorMuted("preview on"))
		return
	}
	t.printf("%s\n", color.ColorMuted("preview off"))
}

func (t *terminal) ShowStatus(s client.Status) {
	if s.Kind == client.StatusError {
		t.printf("%s\n", color.ColorError(s.Message))
		return
	}
	t.printf("%s\n", color.ColorSuccess(s.Message))
}

// ClearStatus is a no-op; printed status lines stay in the scrollback.
func (t *terminal) ClearStatus() {}

// Confirm reads the answer from the same input as the command loop. It is
// only called from that loop, so the reads never overlap.
func (t *terminal) Confirm(question string) bool {
	t.printf("%s [y/N] ", question)
	if !t.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(t.in.Text()))
	return answer == "y" || answer == "yes"
}
