package server

import (
	"log/slog"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
)

// SourceFactory assembles the upstream source behind the shared pacing wrapper.
type SourceFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewSourceFactory returns a factory that logs and records through the given sinks.
func NewSourceFactory(logger *slog.Logger, recorder *metrics.Recorder) SourceFactory {
	return SourceFactory{logger: logger, metrics: recorder}
}

// Build selects the configured source and wraps it with jittered pacing and
// cooldown retries. The offline fixture source is not delayed.
func (f SourceFactory) Build(cfg config.Config, token string) providers.Source {
	opts := providers.LimitOptions{
		Name:     cfg.Provider,
		DelayMin: cfg.Collector.DelayMin,
		DelayMax: cfg.Collector.DelayMax,
		Cooldown: cfg.Collector.Cooldown,
		Logger:   f.logger,
		Metrics:  f.metrics,
	}
	if cfg.Provider == config.ProviderFixture {
		opts.DelayMin, opts.DelayMax = 0, 0
	}
	return providers.NewRateLimitedSource(selectSource(cfg, token), opts)
}
