package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/logging"
)

const (
	appName    = "kickbase-collector"
	appVersion = "dev"

	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"collect": {summary: "fetch every roster player into the result artifact", run: runCollect},
	"events":  {summary: "fetch per-matchday event documents for one player", run: runEvents},
	"analyze": {summary: "aggregate stored event points for one player", run: runAnalyze},
	"login":   {summary: "exchange email and password for a bearer token", run: runLogin},
	"serve":   {summary: "serve the read-only report API", run: runServe},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFatal
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: appName,
		Version: appVersion,
		Output:  stderr,
	})

	e := &env{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	if err := cmd.run(ctx, e, args[1:]); err != nil {
		if isUsage(err) {
			return exitUsage
		}
		logging.Error(logger, args[0]+" failed", err)
		return exitFatal
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: kickbase <command> [flags]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}
