package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
)

const defaultCooldown = 60 * time.Second

// LimitOptions tune the pacing applied in front of every upstream request.
type LimitOptions struct {
	Name     string
	DelayMin time.Duration
	DelayMax time.Duration
	Cooldown time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

type sleepFunc func(ctx context.Context, d time.Duration) error

type fetchFunc func(ctx context.Context) (json.RawMessage, error)

// rateLimitedSource wraps a Source with a randomized pre-request delay and an
// unbounded cooldown-and-retry loop for 429 responses.
type rateLimitedSource struct {
	next     Source
	name     string
	delayMin time.Duration
	delayMax time.Duration
	cooldown time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder
	sleep    sleepFunc
	jitter   func(min, max time.Duration) time.Duration
}

// NewRateLimitedSource returns a Source that paces calls and absorbs rate limiting.
// Auth failures pass through untouched; every other failure becomes a TransientError.
func NewRateLimitedSource(next Source, opts LimitOptions) Source {
	name := opts.Name
	if name == "" {
		name = "kickbase"
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	delayMin := max(opts.DelayMin, 0)
	delayMax := max(opts.DelayMax, delayMin)
	return &rateLimitedSource{
		next:     next,
		name:     name,
		delayMin: delayMin,
		delayMax: delayMax,
		cooldown: cooldown,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		sleep:    sleepCtx,
		jitter:   uniformJitter,
	}
}

func (p *rateLimitedSource) FetchPlayer(ctx context.Context, playerID string) (json.RawMessage, error) {
	target := "player " + playerID
	if p == nil || p.next == nil {
		return nil, &TransientError{Target: target, Err: ErrProviderUnavailable}
	}
	return p.do(ctx, target, func(ctx context.Context) (json.RawMessage, error) {
		return p.next.FetchPlayer(ctx, playerID)
	})
}

func (p *rateLimitedSource) FetchPlayerDay(ctx context.Context, playerID string, day int) (json.RawMessage, error) {
	target := fmt.Sprintf("player %s day %d", playerID, day)
	if p == nil || p.next == nil {
		return nil, &TransientError{Target: target, Err: ErrProviderUnavailable}
	}
	return p.do(ctx, target, func(ctx context.Context) (json.RawMessage, error) {
		return p.next.FetchPlayerDay(ctx, playerID, day)
	})
}

func (p *rateLimitedSource) do(ctx context.Context, target string, fn fetchFunc) (json.RawMessage, error) {
	for {
		if err := p.sleep(ctx, p.jitter(p.delayMin, p.delayMax)); err != nil {
			return nil, err
		}

		start := time.Now()
		doc, err := p.call(ctx, fn)
		p.metrics.RecordProviderAttempt(p.name, time.Since(start), err)
		if err == nil {
			return doc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if rlErr, ok := AsRateLimitError(err); ok {
			if waitErr := p.coolDown(ctx, target, rlErr); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		if IsAuth(err) {
			logFetch(ctx, p.logger, slog.LevelError, p.name, target, "credential rejected", err)
			return nil, err
		}

		logFetch(ctx, p.logger, slog.LevelWarn, p.name, target, "fetch failed", err)
		return nil, asTransient(target, err)
	}
}

// call shields the loop from a panicking inner source.
func (p *rateLimitedSource) call(ctx context.Context, fn fetchFunc) (doc json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return fn(ctx)
}

func uniformJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
