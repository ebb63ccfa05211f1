package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/notesd/internal/metrics"
	"github.com/starford/notesd/internal/storage"
)

// Options holds the optional parts of the router.
type Options struct {
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// Metrics, if non-nil, instruments requests and is exposed at MetricsPath.
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(store storage.Store, logger *slog.Logger, opts Options) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Get("/", Welcome)
	r.Get("/UploadForm.html", UploadForm)
	r.Get("/docs", Docs)
	r.Get("/docs/openapi.yaml", OpenAPI)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{name}", h.GetNote)
	r.Put("/notes/{name}", h.UpdateNote)
	r.Delete("/notes/{name}", h.DeleteNote)
	r.Post("/write", h.CreateNote)

	if opts.Events != nil {
		r.Get("/api/events", opts.Events.ServeHTTP)
	}
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.Metrics.Handler())
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
