package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

// Aggregator merges fetched day documents into per-player summaries on disk
// and derives category totals from them.
type Aggregator struct {
	store      *snapshots.DayStore
	categories Categories
	logger     *slog.Logger
}

// NewAggregator wires a DayStore and a category table. A nil table uses the defaults.
func NewAggregator(store *snapshots.DayStore, categories Categories, logger *slog.Logger) *Aggregator {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Aggregator{store: store, categories: categories, logger: logger}
}

// Categories exposes the active code table.
func (a *Aggregator) Categories() Categories {
	return a.categories
}

// MergeDay persists doc as the day's raw artifact and replaces that day in
// the player's summary.
func (a *Aggregator) MergeDay(playerID string, day int, doc json.RawMessage) error {
	summary, err := a.Summary(playerID)
	if err != nil {
		if !errors.Is(err, snapshots.ErrCorruptData) {
			return err
		}
		logging.Warn(a.logger, "rebuilding corrupt day summary",
			slog.String(logging.FieldPlayerID, playerID),
			slog.Any("err", err),
		)
		summary = NewDaySummary(nil)
	}
	if err := a.store.WriteDay(playerID, day, doc); err != nil {
		return err
	}
	summary.MergeDay(day, doc)
	if err := a.store.SaveSummary(playerID, summary.Days); err != nil {
		return err
	}
	logging.Debug(a.logger, "merged day",
		slog.String(logging.FieldPlayerID, playerID),
		slog.Int(logging.FieldDay, day),
		slog.Int(logging.FieldCount, len(summary.Days)),
	)
	return nil
}

// Summary loads the player's stored days. A player with nothing stored yields
// an empty summary.
func (a *Aggregator) Summary(playerID string) (DaySummary, error) {
	days, err := a.store.LoadSummary(playerID)
	if err != nil {
		if errors.Is(err, snapshots.ErrNotFound) {
			return NewDaySummary(nil), nil
		}
		return DaySummary{}, fmt.Errorf("load summary for player %s: %w", playerID, err)
	}
	return NewDaySummary(days), nil
}

// AggregateRange totals category points over the stored days in [start, end].
func (a *Aggregator) AggregateRange(playerID string, start, end int) (Aggregate, error) {
	summary, err := a.Summary(playerID)
	if err != nil {
		return nil, err
	}
	return AggregateRange(summary, start, end, a.categories), nil
}

// AggregateDays is AggregateRange broken down per day.
func (a *Aggregator) AggregateDays(playerID string, start, end int) (map[int]Aggregate, error) {
	summary, err := a.Summary(playerID)
	if err != nil {
		return nil, err
	}
	return AggregateByDay(summary, start, end, a.categories), nil
}

// Counts tallies how often each category occurred over the stored days in [start, end].
func (a *Aggregator) Counts(playerID string, start, end int) (map[string]int, error) {
	summary, err := a.Summary(playerID)
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, day := range summary.InRange(start, end) {
		for name, n := range CountDay(summary.Days[day], a.categories) {
			out[name] += n
		}
	}
	return out, nil
}
