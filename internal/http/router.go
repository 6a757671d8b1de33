package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"medquery/internal/handlers"
	"medquery/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnswerService service.AnswerService
	// Model is reported by the health endpoint.
	Model string
	// Recorder counts requests rejected before reaching AnswerService; may be nil.
	Recorder service.Recorder
	// Metrics serves /metrics; the route is omitted when nil.
	Metrics http.Handler
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	pageHandler := handlers.NewPageHandler(deps.AnswerService, deps.Recorder)
	askHandler := handlers.NewAskHandler(deps.AnswerService, deps.Recorder)
	healthHandler := handlers.NewHealthHandler(deps.Model)

	r.Method(http.MethodGet, "/", pageHandler)
	r.Method(http.MethodPost, "/", pageHandler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
		})
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
