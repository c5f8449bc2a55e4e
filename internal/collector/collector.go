// Package collector drives sequential, checkpointed collection of player
// documents and per-day event documents.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/roster"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

const defaultCheckpointEvery = 10

// ResultStore persists and reloads the accumulated result set.
type ResultStore interface {
	Save(rs snapshots.ResultSet) error
	Load() (snapshots.ResultSet, error)
}

// Options tune a Collector.
type Options struct {
	RosterPath      string
	CheckpointEvery int
	// Resume seeds the run with the previously saved result set so a
	// checkpoint never holds fewer players than the artifact already did.
	Resume bool
}

// Collector walks the roster in order, fetching one player at a time and
// checkpointing the accumulated results.
type Collector struct {
	source     providers.PlayerSource
	store      ResultStore
	rosterPath string
	every      int
	resume     bool
	logger     *slog.Logger
	metrics    *metrics.Recorder

	loadRoster func(path string) ([]string, error)
	newRunID   func() string
	now        func() time.Time

	stateMu sync.RWMutex
	state   State
}

// New constructs a Collector.
func New(source providers.PlayerSource, store ResultStore, opts Options, logger *slog.Logger, recorder *metrics.Recorder) *Collector {
	every := opts.CheckpointEvery
	if every <= 0 {
		every = defaultCheckpointEvery
	}
	return &Collector{
		source:     source,
		store:      store,
		rosterPath: opts.RosterPath,
		every:      every,
		resume:     opts.Resume,
		logger:     logger,
		metrics:    recorder,
		loadRoster: roster.Load,
		newRunID:   uuid.NewString,
		now:        time.Now,
		state:      StateInit,
	}
}

// State returns the current step of the most recent run.
func (c *Collector) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Collector) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

type run struct {
	summary         Summary
	results         snapshots.ResultSet
	sinceCheckpoint int
	logger          *slog.Logger
	started         time.Time
}

// Run executes one collection pass. Per-player failures are skipped; auth
// failures, a failed session check and an unusable roster end the run in
// StateFatal with an error. Cancellation writes one last checkpoint and
// returns ctx.Err().
func (c *Collector) Run(ctx context.Context) (Summary, error) {
	r := &run{
		summary: Summary{RunID: c.newRunID()},
		started: c.now(),
	}
	r.logger = c.logger
	if r.logger != nil {
		r.logger = r.logger.With(slog.String(logging.FieldRunID, r.summary.RunID))
	}
	ctx = logging.WithLogger(ctx, r.logger)

	c.transition(r, StateInit)
	ids, err := c.loadRoster(c.rosterPath)
	if err != nil {
		return c.fatal(r, fmt.Errorf("load roster: %w", err))
	}
	r.summary.Targets = len(ids)
	if len(ids) == 0 {
		return c.fatal(r, fmt.Errorf("load roster: %w", roster.ErrMissingRoster))
	}
	if err := c.seed(r, ids); err != nil {
		return c.fatal(r, err)
	}
	logging.Info(r.logger, "collection started",
		slog.Int(logging.FieldTotal, len(ids)),
		slog.Int("seeded", r.results.Len()),
		slog.Int("checkpoint_every", c.every),
	)

	c.transition(r, StateValidating)
	if err := c.fetchOne(ctx, r, ids[0], 0); err != nil {
		if ctx.Err() != nil {
			return c.interrupt(ctx, r)
		}
		return c.fatal(r, fmt.Errorf("session validation failed on player %s: %w", ids[0], err))
	}
	c.maybeCheckpoint(r)

	c.transition(r, StateIterating)
	for i := 1; i < len(ids); i++ {
		if ctx.Err() != nil {
			return c.interrupt(ctx, r)
		}
		err := c.fetchOne(ctx, r, ids[i], i)
		switch {
		case err == nil:
		case providers.IsAuth(err):
			return c.fatal(r, fmt.Errorf("player %s: %w", ids[i], err))
		case ctx.Err() != nil:
			return c.interrupt(ctx, r)
		}
		c.maybeCheckpoint(r)
	}

	c.transition(r, StateFinalizing)
	if err := c.checkpoint(r); err != nil {
		return c.fatal(r, fmt.Errorf("final checkpoint: %w", err))
	}
	c.transition(r, StateDone)
	r.summary.setDuration(c.now().Sub(r.started))
	logging.Info(r.logger, "collection finished",
		slog.Int("succeeded", r.summary.Succeeded),
		slog.Int("attempted", r.summary.Attempted),
		slog.Int("failed", r.summary.Failed),
		slog.Int(logging.FieldCount, r.summary.Stored),
		slog.Int64(logging.FieldDurationMS, r.summary.DurationMS),
	)
	return r.summary, nil
}

// seed starts the run from the saved result set when resuming. Only players
// still in the roster are carried over.
func (c *Collector) seed(r *run, ids []string) error {
	r.results = snapshots.NewResultSet()
	if !c.resume {
		return nil
	}
	prior, err := c.store.Load()
	switch {
	case err == nil:
		for _, id := range ids {
			if doc, ok := prior.Get(id); ok {
				r.results.Put(id, doc)
			}
		}
		if dropped := prior.Len() - r.results.Len(); dropped > 0 {
			logging.Info(r.logger, "dropped players no longer in roster", slog.Int(logging.FieldCount, dropped))
		}
		r.summary.Stored = r.results.Len()
	case errors.Is(err, snapshots.ErrNotFound):
		logging.Info(r.logger, "no previous results, starting fresh")
	case errors.Is(err, snapshots.ErrCorruptData):
		logging.Warn(r.logger, "previous results unreadable, starting fresh", slog.Any("err", err))
	default:
		return fmt.Errorf("load previous results: %w", err)
	}
	return nil
}

// fetchOne fetches and records a single player. A failure that is neither
// auth nor cancellation is counted and swallowed.
func (c *Collector) fetchOne(ctx context.Context, r *run, id string, idx int) error {
	r.summary.Attempted++
	doc, err := c.fetch(ctx, id)
	if err != nil {
		if ctx.Err() != nil && !providers.IsAuth(err) {
			return ctx.Err()
		}
		r.summary.Failed++
		c.metrics.RecordTarget(metrics.OutcomeFailed)
		logging.Warn(r.logger, "player fetch failed",
			slog.String(logging.FieldPlayerID, id),
			slog.Int("idx", idx+1),
			slog.Int(logging.FieldTotal, r.summary.Targets),
			slog.Any("err", err),
		)
		if providers.IsAuth(err) || c.State() == StateValidating {
			return err
		}
		return nil
	}

	r.results.Put(id, doc)
	r.summary.Succeeded++
	r.summary.Stored = r.results.Len()
	r.sinceCheckpoint++
	c.metrics.RecordTarget(metrics.OutcomeSucceeded)
	logging.Info(r.logger, "player fetched",
		slog.String(logging.FieldPlayerID, id),
		slog.Int("idx", idx+1),
		slog.Int(logging.FieldTotal, r.summary.Targets),
		slog.String("progress", fmt.Sprintf("%.1f%%", float64(idx+1)*100/float64(r.summary.Targets))),
	)
	return nil
}

// fetch shields the loop from a panicking source.
func (c *Collector) fetch(ctx context.Context, id string) (doc json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("player %s: panic: %v", id, rec)
		}
	}()
	doc, err = c.source.FetchPlayer(ctx, id)
	if err == nil && len(doc) == 0 {
		err = fmt.Errorf("player %s: %w", id, providers.ErrNoResult)
	}
	return doc, err
}

// maybeCheckpoint saves once the cadence is reached. A failed intermediate
// checkpoint is logged and the run goes on; the next one retries.
func (c *Collector) maybeCheckpoint(r *run) {
	if r.sinceCheckpoint >= c.every {
		_ = c.checkpoint(r)
	}
}

func (c *Collector) checkpoint(r *run) error {
	prev := c.State()
	c.transition(r, StateCheckpointing)
	start := time.Now()
	err := c.store.Save(r.results)
	c.metrics.RecordCheckpoint(r.results.Len(), time.Since(start), err)
	r.sinceCheckpoint = 0
	defer c.transition(r, prev)
	if err != nil {
		logging.Error(r.logger, "checkpoint failed", err, slog.Int(logging.FieldCount, r.results.Len()))
		return err
	}
	r.summary.Checkpoints++
	logging.Info(r.logger, "checkpoint written",
		slog.Int(logging.FieldCount, r.results.Len()),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return nil
}

func (c *Collector) interrupt(ctx context.Context, r *run) (Summary, error) {
	logging.Warn(r.logger, "collection interrupted", slog.Int("unsaved", r.sinceCheckpoint))
	if r.sinceCheckpoint > 0 {
		_ = c.checkpoint(r)
	}
	c.transition(r, StateInterrupted)
	r.summary.setDuration(c.now().Sub(r.started))
	return r.summary, ctx.Err()
}

func (c *Collector) fatal(r *run, err error) (Summary, error) {
	c.transition(r, StateFatal)
	r.summary.setDuration(c.now().Sub(r.started))
	logging.Error(r.logger, "collection aborted", err,
		slog.Int("succeeded", r.summary.Succeeded),
		slog.Int("checkpoints", r.summary.Checkpoints),
	)
	return r.summary, err
}

func (c *Collector) transition(r *run, s State) {
	c.setState(s)
	r.summary.State = s
	logging.Debug(r.logger, "collector state", slog.String(logging.FieldState, string(s)))
}
