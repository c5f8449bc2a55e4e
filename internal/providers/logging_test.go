package providers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/preston-bernstein/kickbase-collector/internal/logging"
)

func TestLogFetchPrefersContextLogger(t *testing.T) {
	var fallbackBuf, ctxBuf bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&fallbackBuf, nil))
	scoped := slog.New(slog.NewTextHandler(&ctxBuf, nil))

	ctx := logging.WithLogger(context.Background(), scoped)
	logFetch(ctx, fallback, slog.LevelWarn, "kickbase", "player 42", "rate limited", nil, slog.Int("attempt", 2))

	assert.Empty(t, fallbackBuf.String())
	out := ctxBuf.String()
	assert.Contains(t, out, "provider=kickbase")
	assert.Contains(t, out, `target="player 42"`)
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "rate limited")
	assert.NotContains(t, out, "error=")
}

func TestLogFetchAttachesError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logFetch(context.Background(), logger, slog.LevelError, "fixture", "day 3", "fetch failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestLogFetchToleratesNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		logFetch(context.Background(), nil, slog.LevelInfo, "kickbase", "x", "noop", nil)
	})
}
