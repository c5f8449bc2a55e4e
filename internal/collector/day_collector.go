package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
)

// ErrInvalidRange is returned for a day range that cannot be walked.
var ErrInvalidRange = errors.New("invalid day range")

// DayMerger stores one fetched day document for a player.
type DayMerger interface {
	MergeDay(playerID string, day int, doc json.RawMessage) error
}

// DayRun reports which days a DayCollector run stored or skipped.
type DayRun struct {
	PlayerID string `json:"playerId"`
	Stored   []int  `json:"stored"`
	Skipped  []int  `json:"skipped"`
}

// DayCollector fetches a player's event documents day by day.
type DayCollector struct {
	source  providers.EventSource
	merger  DayMerger
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewDayCollector constructs a DayCollector.
func NewDayCollector(source providers.EventSource, merger DayMerger, logger *slog.Logger, recorder *metrics.Recorder) *DayCollector {
	return &DayCollector{source: source, merger: merger, logger: logger, metrics: recorder}
}

// Run fetches days start..end inclusive in order. Failed days are skipped;
// an auth failure or cancellation stops the run.
func (d *DayCollector) Run(ctx context.Context, playerID string, start, end int) (DayRun, error) {
	out := DayRun{PlayerID: playerID, Stored: []int{}, Skipped: []int{}}
	if start < 1 || end < start {
		return out, fmt.Errorf("%w: %d..%d", ErrInvalidRange, start, end)
	}
	logger := d.logger
	if logger != nil {
		logger = logger.With(slog.String(logging.FieldPlayerID, playerID))
	}
	ctx = logging.WithLogger(ctx, logger)
	logging.Info(logger, "fetching player days", slog.Int("from", start), slog.Int("to", end))

	for day := start; day <= end; day++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		doc, err := d.source.FetchPlayerDay(ctx, playerID, day)
		if err != nil {
			if providers.IsAuth(err) {
				return out, fmt.Errorf("player %s day %d: %w", playerID, day, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			out.Skipped = append(out.Skipped, day)
			d.metrics.RecordTarget(metrics.OutcomeFailed)
			logging.Warn(logger, "day fetch failed, skipping", slog.Int(logging.FieldDay, day), slog.Any("err", err))
			continue
		}
		if err := d.merger.MergeDay(playerID, day, doc); err != nil {
			return out, fmt.Errorf("store player %s day %d: %w", playerID, day, err)
		}
		out.Stored = append(out.Stored, day)
		d.metrics.RecordTarget(metrics.OutcomeSucceeded)
		logging.Info(logger, "day stored", slog.Int(logging.FieldDay, day))
	}

	logging.Info(logger, "player days complete",
		slog.Int("stored", len(out.Stored)),
		slog.Int("skipped", len(out.Skipped)),
	)
	return out, nil
}
