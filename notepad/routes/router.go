// notepad/routes/router.go
package routes

import (
	"net/http"
	"time"

	"notepad/notepad/controllers"
	"notepad/notepad/middlewares"
	"notepad/notepad/services/metrics"
	"notepad/notepad/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Dependencies struct {
	Pages       *controllers.PagesController
	Export      *controllers.ExportController
	Health      *controllers.HealthController
	Events      http.Handler
	Metrics     *metrics.Collector
	CORSOrigins []string
}

func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger(logging.RequestLogger))
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Instrument(deps.Metrics))
	r.Use(middlewares.CORS(deps.CORSOrigins))

	r.Get("/health", deps.Health.HealthCheck)
	r.Get("/ready", deps.Health.ReadinessCheck)
	r.Get("/metrics", deps.Health.Metrics)
	if deps.Metrics != nil {
		r.Handle("/metrics/prometheus", deps.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		api.Mount("/pages", PagesRoutes(deps.Pages, deps.Export))
	})

	// long-lived, so outside the API timeout
	if deps.Events != nil {
		r.Handle("/ws", deps.Events)
	}

	staticRoutes(r, deps.Pages)
	return r
}
