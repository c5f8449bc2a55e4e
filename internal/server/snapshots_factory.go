package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/events"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

// Stores groups the on-disk artifacts every command reads or writes.
type Stores struct {
	Results    *snapshots.Store
	Days       *snapshots.DayStore
	Aggregator *events.Aggregator
}

// NewStores opens the result artifact and the day store, loading category
// overrides when a categories file is configured.
func NewStores(cfg config.Config, logger *slog.Logger) (Stores, error) {
	cats, err := events.LoadCategories(cfg.Events.CategoriesPath)
	if err != nil {
		return Stores{}, fmt.Errorf("load categories: %w", err)
	}
	days := snapshots.NewDayStore(cfg.Events.DataDir)
	return Stores{
		Results:    snapshots.NewStore(cfg.Collector.OutputPath, time.Now),
		Days:       days,
		Aggregator: events.NewAggregator(days, cats, logger),
	}, nil
}
