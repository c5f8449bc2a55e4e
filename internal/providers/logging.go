package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/kickbase-collector/internal/logging"
)

// logFetch emits a fetch-path entry through the context logger, tagged with
// the provider and the target being fetched. A non-nil err is attached too.
func logFetch(ctx context.Context, logger *slog.Logger, level slog.Level, provider, target, msg string, err error, args ...any) {
	args = append(args,
		slog.String(logging.FieldProvider, provider),
		slog.String(logging.FieldTarget, target),
	)
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	logging.Log(ctx, logger, level, msg, args...)
}
