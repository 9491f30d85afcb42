// Package httpapi is the operator-facing HTTP surface: the run switch,
// dashboard reads over the ledger and a health probe.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"FeedbackResponder/internal/ports"
)

// Config holds the collaborators of the router.
type Config struct {
	State     ports.RunState
	Dashboard DashboardReader
	Ledger    Pinger
	APIKey    string
	Logger    *slog.Logger
}

// NewRouter builds the chi router.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	run := NewRunHandler(cfg.State, logger)
	dashboard := NewDashboardHandler(cfg.Dashboard, logger)
	health := NewHealthHandler(cfg.Ledger)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(logger))
	r.Use(Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader, "X-API-Key"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/api/health", health.Health)

	r.Group(func(r chi.Router) {
		r.Use(APIKey(cfg.APIKey))

		r.Route("/api/run", func(r chi.Router) {
			r.Get("/status", run.Status)
			r.Post("/start", run.Start)
			r.Post("/stop", run.Stop)
		})

		r.Route("/api/dashboard", func(r chi.Router) {
			r.Get("/stats", dashboard.Stats)
			r.Get("/logs", dashboard.Logs)
			r.Get("/analytics", dashboard.Analytics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, &APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"})
	})

	return r
}
