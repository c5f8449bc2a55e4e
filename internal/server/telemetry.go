package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
)

var metricsSetup = metrics.Setup

// Telemetry owns the metrics recorder and, when enabled, the listener that
// exposes it. Commands that do not serve the report API still run one.
type Telemetry struct {
	recorder *metrics.Recorder
	server   httpServer
	stop     func(context.Context) error
	logger   *slog.Logger
}

// NewTelemetry configures exporters per cfg. A setup failure degrades to an
// in-memory recorder so callers never see a nil one.
func NewTelemetry(ctx context.Context, cfg config.Config, logger *slog.Logger) *Telemetry {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(ctx, recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return &Telemetry{recorder: metrics.NewRecorder(), logger: logger}
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}

	t := &Telemetry{recorder: rec, stop: shutdown, logger: logger}
	if handler != nil && recCfg.Enabled {
		t.server = newNetHTTPServer(":"+recCfg.Port, handler)
	}
	return t
}

// Recorder returns the recorder shared by every component of the run.
func (t *Telemetry) Recorder() *metrics.Recorder {
	if t == nil {
		return nil
	}
	return t.recorder
}

// Start launches the metrics listener in the background when one is configured.
func (t *Telemetry) Start() {
	if t == nil || t.server == nil {
		return
	}
	launchServer("metrics", t.server, t.logger, nil)
}

// Shutdown flushes exporters and stops the listener.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t == nil {
		return
	}
	if t.stop != nil {
		if err := t.stop(ctx); err != nil {
			logging.Warn(t.logger, "metrics shutdown failed", "error", err)
		}
	}
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			logging.Warn(t.logger, "metrics server shutdown failed", "error", err)
		}
	}
}
