package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/preston-bernstein/kickbase-collector/internal/http/handlers"
	"github.com/preston-bernstein/kickbase-collector/internal/http/middleware"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
)

// NewRouter registers the report routes on a chi mux behind the request
// logging middleware.
func NewRouter(handler *handlers.Handler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Logging(logger, recorder))
	r.Use(chimw.Recoverer)

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Route("/players", func(r chi.Router) {
		r.Get("/", handler.Players)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.Player)
			r.Get("/days", handler.PlayerDays)
			r.Get("/points", handler.PlayerPoints)
		})
	})
	return r
}
