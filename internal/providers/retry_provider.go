package providers

import (
	"context"
	"log/slog"
	"time"
)

// cooldownFor picks the wait before retrying a rate-limited request.
// A Retry-After hint longer than the configured cooldown wins.
func (p *rateLimitedSource) cooldownFor(rlErr *RateLimitError) time.Duration {
	wait := p.cooldown
	if rlErr != nil && rlErr.RetryAfter > wait {
		wait = rlErr.RetryAfter
	}
	return wait
}

func (p *rateLimitedSource) coolDown(ctx context.Context, target string, rlErr *RateLimitError) error {
	wait := p.cooldownFor(rlErr)
	p.metrics.RecordRateLimit(p.name, wait)
	logFetch(ctx, p.logger, slog.LevelWarn, p.name, target, "rate limited, cooling down", nil,
		slog.Duration("cooldown", wait),
	)
	if err := p.sleep(ctx, wait); err != nil {
		logFetch(ctx, p.logger, slog.LevelWarn, p.name, target, "cooldown canceled", err)
		return err
	}
	return nil
}
