package testutil

import (
	"context"
	"sync/atomic"

	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
)

// NewRecorderWithShutdown returns an in-memory recorder, a shutdown func for
// injecting into telemetry setup, and a counter of how often it was called.
func NewRecorderWithShutdown() (*metrics.Recorder, func(context.Context) error, *atomic.Int32) {
	var calls atomic.Int32
	return metrics.NewRecorder(), func(context.Context) error {
		calls.Add(1)
		return nil
	}, &calls
}
