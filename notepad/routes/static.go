package routes

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"notepad/notepad/controllers"
	"notepad/notepad/utils/logging"
	"notepad/notepad/utils/markup"
	"notepad/notepad/web"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.ParseFS(web.Assets, "index.html"))

var staticFiles = map[string]bool{
	"app.js":    true,
	"style.css": true,
}

// staticRoutes serves the browser client. The root document arrives with the
// sidebar already filled in; app.js takes over once it loads.
func staticRoutes(r chi.Router, pages *controllers.PagesController) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var sidebar string
		if list, err := pages.ListPages(ctx); err != nil {
			logging.ErrorLogger.Error("prefill sidebar", zap.Error(err))
		} else {
			sidebar = markup.SidebarHTML(list, 0)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// SidebarHTML escapes every title itself
		if err := indexTemplate.Execute(w, struct{ Sidebar template.HTML }{template.HTML(sidebar)}); err != nil {
			logging.ErrorLogger.Error("render index", zap.Error(err))
		}
	})

	r.Get("/static/{file}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")
		if !staticFiles[name] {
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, web.Assets, name)
	})
}
