// notepad/routes/respond.go
package routes

import (
	"errors"
	"fmt"
	"net/http"

	"notepad/notepad/utils/jsonutils"
	"notepad/notepad/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// apiError is an error that is safe to show to the client.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func errorf(status int, format string, args ...any) error {
	return &apiError{status: status, message: fmt.Sprintf(format, args...)}
}

var (
	errNotFound    = &apiError{status: http.StatusNotFound, message: "Page not found"}
	errBadBody     = &apiError{status: http.StatusBadRequest, message: "Invalid request body"}
	errStoreFailed = &apiError{status: http.StatusInternalServerError, message: "Database error"}
)

// handleJSON runs handler and encodes its result, or an {"error": ...} body.
// Errors that are not *apiError are logged and reported as a store failure.
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			var apiErr *apiError
			if !errors.As(err, &apiErr) {
				logging.ErrorLogger.Error("request failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Error(err),
				)
				apiErr = errStoreFailed
			}
			jsonutils.WriteJSON(w, apiErr.status, map[string]string{"error": apiErr.message})
			return
		}
		if raw, ok := res.(rawBody); ok {
			raw.write(w, status)
			return
		}
		jsonutils.WriteJSON(w, status, res)
	}
}

// rawBody lets a handleJSON handler answer with a non-JSON download.
type rawBody struct {
	contentType string
	filename    string
	data        []byte
}

func (b rawBody) write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", b.contentType)
	if b.filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.filename))
	}
	w.WriteHeader(status)
	w.Write(b.data)
}


// validate checks URL parameters before they reach a controller.
var validate = validator.New()
