package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	httpserver "github.com/preston-bernstein/kickbase-collector/internal/http"
	"github.com/preston-bernstein/kickbase-collector/internal/http/handlers"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
	"github.com/preston-bernstein/kickbase-collector/internal/poller"
	"github.com/preston-bernstein/kickbase-collector/internal/store"
)

// Server runs the read-only report API next to the metrics listener.
type Server struct {
	logger     *slog.Logger
	telemetry  *Telemetry
	httpServer httpServer
	poller     *poller.Poller
}

// RefreshFunc builds the scheduled collection job once telemetry exists.
type RefreshFunc func(rec *metrics.Recorder) poller.Job

// New wires stores, handlers and telemetry from cfg. When refresh is non-nil
// and cfg.Collector.Interval is positive, the job it returns runs on that
// interval for as long as the server does.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, refresh RefreshFunc) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	stores, err := NewStores(cfg, logger)
	if err != nil {
		return nil, err
	}
	telemetry := NewTelemetry(ctx, cfg, logger)

	var p *poller.Poller
	var statusFn func() poller.Status
	if refresh != nil && cfg.Collector.Interval > 0 {
		p = poller.New(refresh(telemetry.Recorder()), logger, cfg.Collector.Interval)
		statusFn = p.Status
	}

	handler := handlers.NewHandler(store.NewMemoryStore(stores.Results), stores.Aggregator, logger, statusFn)
	router := httpserver.NewRouter(handler, logger, telemetry.Recorder())

	return &Server{
		logger:     logger,
		telemetry:  telemetry,
		httpServer: newNetHTTPServer(":"+cfg.Port, router),
		poller:     p,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(logger *slog.Logger, httpSrv httpServer, telemetry *Telemetry, p *poller.Poller) *Server {
	return &Server{
		logger:     logger,
		telemetry:  telemetry,
		httpServer: httpSrv,
		poller:     p,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts both
// servers down. A listener failure is returned; a clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	s.telemetry.Start()
	if s.poller != nil {
		s.poller.Start(ctx)
	}

	listenErr := make(chan error, 1)
	launchServer("http", s.httpServer, s.logger, func(err error) {
		listenErr <- err
	})

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info(s.logger, "shutdown signal received")
	case runErr = <-listenErr:
	}

	s.gracefulShutdown()
	return runErr
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.poller != nil {
		if err := s.poller.Stop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "scheduled collection did not stop in time", "error", err)
		}
	}
	s.telemetry.Shutdown(shutdownCtx)

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Recorder exposes the metrics recorder.
func (s *Server) Recorder() *metrics.Recorder {
	return s.telemetry.Recorder()
}
