// notepad/routes/pages.go
package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"notepad/notepad/controllers"
	"notepad/notepad/sources/storage"
	"notepad/notepad/utils/markdown"

	"github.com/go-chi/chi/v5"
)

type createPageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// pageID parses the {id} URL parameter. Anything that is not a positive
// integer cannot match a row, so it is reported as not found.
func pageID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	if err := validate.Var(raw, "required,number"); err != nil {
		return 0, errNotFound
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errNotFound
	}
	return uint(id), nil
}

// decodeBody decodes JSON into dst; an empty body leaves dst untouched.
// Titles and content are stored as given, whatever their length.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

func pageError(err error) error {
	if errors.Is(err, controllers.ErrPageNotFound) {
		return errNotFound
	}
	return err
}

func PagesRoutes(ctrl *controllers.PagesController, exportCtrl *controllers.ExportController) chi.Router {
	r := chi.NewRouter()

	// List summaries, most recently updated first
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		pages, err := ctrl.ListPages(r.Context())
		if err != nil {
			return nil, 0, err
		}
		return pages, http.StatusOK, nil
	}))

	// Create page
	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req createPageRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, 0, err
		}
		page, err := ctrl.CreatePage(r.Context(), req.Title, req.Content)
		if err != nil {
			return nil, 0, err
		}
		return page, http.StatusCreated, nil
	}))

	// Get single page
	r.Get("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := pageID(r)
		if err != nil {
			return nil, 0, err
		}
		page, err := ctrl.GetPage(r.Context(), id)
		if err != nil {
			return nil, 0, pageError(err)
		}
		return page, http.StatusOK, nil
	}))

	// Update page
	r.Put("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := pageID(r)
		if err != nil {
			return nil, 0, err
		}
		var req updatePageRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, 0, err
		}
		page, err := ctrl.UpdatePage(r.Context(), id, req.Title, req.Content)
		if err != nil {
			return nil, 0, pageError(err)
		}
		return page, http.StatusOK, nil
	}))

	// Delete page
	r.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := pageID(r)
		if err != nil {
			return nil, 0, err
		}
		if err := ctrl.DeletePage(r.Context(), id); err != nil {
			return nil, 0, pageError(err)
		}
		return map[string]string{"message": "Page deleted successfully"}, http.StatusOK, nil
	}))

	// Download as Markdown with YAML frontmatter
	r.Get("/{id}/export", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := pageID(r)
		if err != nil {
			return nil, 0, err
		}
		page, doc, err := exportCtrl.Export(r.Context(), id)
		if err != nil {
			return nil, 0, pageError(err)
		}
		return rawBody{
			contentType: "text/markdown; charset=utf-8",
			filename:    markdown.Filename(page),
			data:        doc,
		}, http.StatusOK, nil
	}))

	r.Post("/{id}/archive", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := pageID(r)
		if err != nil {
			return nil, 0, err
		}
		res, err := exportCtrl.Archive(r.Context(), id)
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, 0, errorf(http.StatusServiceUnavailable, "Archive storage not configured")
		}
		if err != nil {
			return nil, 0, pageError(err)
		}
		return res, http.StatusCreated, nil
	}))

	return r
}
