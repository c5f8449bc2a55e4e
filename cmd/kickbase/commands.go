package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/auth"
	"github.com/preston-bernstein/kickbase-collector/internal/collector"
	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/events"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
	"github.com/preston-bernstein/kickbase-collector/internal/metrics"
	"github.com/preston-bernstein/kickbase-collector/internal/poller"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/server"
)

var errUsage = errors.New("usage")

func isUsage(err error) bool {
	return errors.Is(err, errUsage)
}

type env struct {
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (e *env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func (e *env) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(e.stderr, "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}

func (e *env) credentials() *auth.Provider {
	return auth.NewProvider(e.cfg.Auth, e.cfg.EnvFile, server.NewKickbaseClient(e.cfg, ""), e.logger)
}

// source builds the paced upstream source. Only the live API needs a credential.
func (e *env) source(ctx context.Context, rec *metrics.Recorder) (providers.Source, error) {
	var token string
	if e.cfg.Provider == config.ProviderKickbase {
		cred, err := e.credentials().Obtain(ctx)
		if err != nil {
			return nil, err
		}
		logging.Info(e.logger, "credential ready",
			slog.String("source", string(cred.Source)),
			slog.String("token", cred.Redacted()),
		)
		token = cred.Token
	}
	return server.NewSourceFactory(e.logger, rec).Build(e.cfg, token), nil
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCollect(ctx context.Context, e *env, args []string) error {
	fs := e.flags("collect")
	fs.StringVar(&e.cfg.Collector.RosterPath, "roster", e.cfg.Collector.RosterPath, "roster artifact to iterate")
	fs.StringVar(&e.cfg.Collector.OutputPath, "output", e.cfg.Collector.OutputPath, "result artifact to write")
	fs.IntVar(&e.cfg.Collector.CheckpointEvery, "checkpoint-every", e.cfg.Collector.CheckpointEvery, "successes between checkpoints")
	fs.BoolVar(&e.cfg.Collector.Resume, "resume", e.cfg.Collector.Resume, "seed from the existing result artifact")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	telemetry := server.NewTelemetry(ctx, e.cfg, e.logger)
	telemetry.Start()
	defer shutdownTelemetry(telemetry)

	stores, err := server.NewStores(e.cfg, e.logger)
	if err != nil {
		return err
	}
	src, err := e.source(ctx, telemetry.Recorder())
	if err != nil {
		return err
	}

	summary, err := e.collector(src, stores, telemetry.Recorder()).Run(ctx)
	if printErr := e.printJSON(summary); printErr != nil {
		return printErr
	}
	if err != nil && summary.State == collector.StateInterrupted {
		logging.Warn(e.logger, "collection interrupted", slog.Int(logging.FieldCount, summary.Stored))
		return nil
	}
	return err
}

func (e *env) collector(src providers.Source, stores server.Stores, rec *metrics.Recorder) *collector.Collector {
	return collector.New(src, stores.Results, collector.Options{
		RosterPath:      e.cfg.Collector.RosterPath,
		CheckpointEvery: e.cfg.Collector.CheckpointEvery,
		Resume:          e.cfg.Collector.Resume,
	}, e.logger, rec)
}

// refresh runs one full collection per scheduled cycle. The credential is
// re-obtained every cycle since a token can expire between runs.
func (e *env) refresh(rec *metrics.Recorder) poller.Job {
	return func(ctx context.Context) error {
		stores, err := server.NewStores(e.cfg, e.logger)
		if err != nil {
			return err
		}
		src, err := e.source(ctx, rec)
		if err != nil {
			return err
		}
		summary, err := e.collector(src, stores, rec).Run(ctx)
		if err != nil {
			return err
		}
		logging.Info(e.logger, "scheduled collection finished",
			slog.Int(logging.FieldCount, summary.Stored),
		)
		return nil
	}
}

func runEvents(ctx context.Context, e *env, args []string) error {
	fs := e.flags("events")
	player := fs.String("player", "", "player id (required)")
	from := fs.Int("from", events.FirstMatchday, "first matchday")
	to := fs.Int("to", events.LastMatchday, "last matchday")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if *player == "" {
		fmt.Fprintln(e.stderr, "events: -player is required")
		return errUsage
	}

	stores, err := server.NewStores(e.cfg, e.logger)
	if err != nil {
		return err
	}
	rec := metrics.NewRecorder()
	src, err := e.source(ctx, rec)
	if err != nil {
		return err
	}

	res, err := collector.NewDayCollector(src, stores.Aggregator, e.logger, rec).Run(ctx, *player, *from, *to)
	if err != nil {
		if errors.Is(err, collector.ErrInvalidRange) {
			fmt.Fprintln(e.stderr, err)
			return errUsage
		}
		return err
	}
	return e.printJSON(res)
}

type analysis struct {
	PlayerID   string                         `json:"playerId"`
	From       int                            `json:"from"`
	To         int                            `json:"to"`
	Total      int                            `json:"total"`
	Categories []events.CategoryTotal         `json:"categories"`
	Counts     map[string]int                 `json:"counts,omitempty"`
	Days       map[int][]events.CategoryTotal `json:"days,omitempty"`
}

func runAnalyze(_ context.Context, e *env, args []string) error {
	fs := e.flags("analyze")
	player := fs.String("player", "", "player id (required)")
	from := fs.Int("from", events.FirstMatchday, "first matchday")
	to := fs.Int("to", events.LastMatchday, "last matchday")
	byDay := fs.Bool("by-day", false, "include a per-matchday breakdown")
	counts := fs.Bool("counts", false, "include per-category event counts")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if *player == "" {
		fmt.Fprintln(e.stderr, "analyze: -player is required")
		return errUsage
	}

	stores, err := server.NewStores(e.cfg, e.logger)
	if err != nil {
		return err
	}
	agg, err := stores.Aggregator.AggregateRange(*player, *from, *to)
	if err != nil {
		return err
	}
	out := analysis{PlayerID: *player, From: *from, To: *to, Categories: agg.Sorted()}
	for _, v := range agg {
		out.Total += v
	}
	if *counts {
		if out.Counts, err = stores.Aggregator.Counts(*player, *from, *to); err != nil {
			return err
		}
	}
	if *byDay {
		perDay, err := stores.Aggregator.AggregateDays(*player, *from, *to)
		if err != nil {
			return err
		}
		out.Days = make(map[int][]events.CategoryTotal, len(perDay))
		for day, a := range perDay {
			out.Days[day] = a.Sorted()
		}
	}
	return e.printJSON(out)
}

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := e.flags("login")
	save := fs.Bool("save", e.cfg.Auth.PersistToken, "write the token to the env file")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	cred, err := e.credentials().Login(ctx, *save)
	if err != nil {
		return err
	}
	return e.printJSON(struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
		Saved     bool      `json:"saved"`
	}{Token: cred.Redacted(), ExpiresAt: cred.ExpiresAt, Saved: cred.Persisted})
}

func runServe(ctx context.Context, e *env, args []string) error {
	fs := e.flags("serve")
	fs.StringVar(&e.cfg.Port, "port", e.cfg.Port, "listen port")
	fs.DurationVar(&e.cfg.Collector.Interval, "interval", e.cfg.Collector.Interval, "collect on this interval while serving (0 disables)")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	srv, err := server.New(ctx, e.cfg, e.logger, e.refresh)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func shutdownTelemetry(t *server.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.Shutdown(ctx)
}
