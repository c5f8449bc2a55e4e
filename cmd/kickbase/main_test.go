package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/kickbase-collector/internal/collector"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
	"github.com/preston-bernstein/kickbase-collector/internal/testutil"
)

type workspace struct {
	dir     string
	output  string
	dataDir string
}

// setupFixtureEnv points every path setting at a temp dir and selects the
// offline fixture source seeded with fixtureIDs.
func setupFixtureEnv(t *testing.T, fixtureIDs ...string) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:     dir,
		output:  filepath.Join(dir, "detailed_players.json"),
		dataDir: filepath.Join(dir, "data"),
	}
	fixtureStore := snapshots.NewStore(filepath.Join(dir, "fixture.json"), testutil.NowAt(testutil.Day(2024, time.May, 1)))
	testutil.SeedResults(t, fixtureStore, fixtureIDs...)

	t.Setenv("KICKBASE_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("KICKBASE_CONFIG", "")
	t.Setenv("BEARER_TOKEN", "")
	t.Setenv("KICKBASE_EMAIL", "")
	t.Setenv("KICKBASE_PASSWORD", "")
	t.Setenv("KICKBASE_PROVIDER", "fixture")
	t.Setenv("KICKBASE_FIXTURE_PATH", fixtureStore.Path())
	t.Setenv("KICKBASE_OUTPUT_PATH", ws.output)
	t.Setenv("KICKBASE_DATA_DIR", ws.dataDir)
	t.Setenv("KICKBASE_CATEGORIES_PATH", "")
	t.Setenv("KICKBASE_ROSTER_PATH", "")
	t.Setenv("KICKBASE_COLLECT_INTERVAL", "")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return ws
}

func runCLI(t *testing.T, args ...string) (int, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, &stdout, &stderr
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "usage: kickbase")
	assert.Contains(t, stderr.String(), "collect")
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "scrape")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), `unknown command "scrape"`)
}

func TestRunRejectsBadConfig(t *testing.T) {
	setupFixtureEnv(t)
	t.Setenv("KICKBASE_PROVIDER", "carrier-pigeon")
	code, _, stderr := runCLI(t, "analyze", "-player", "1")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr.String(), "config:")
}

func TestCollectWithFixtureSource(t *testing.T) {
	ws := setupFixtureEnv(t, "1", "2", "3")
	roster := testutil.WriteRoster(t, ws.dir, "1", "2", "4")

	code, stdout, stderr := runCLI(t, "collect", "-roster", roster)
	require.Equal(t, exitOK, code, stderr.String())

	var summary collector.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, collector.StateDone, summary.State)
	assert.Equal(t, 3, summary.Targets)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	rs, err := snapshots.NewStore(ws.output, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, rs.Keys())
}

func TestCollectMissingRosterIsFatal(t *testing.T) {
	ws := setupFixtureEnv(t, "1")

	code, stdout, _ := runCLI(t, "collect", "-roster", filepath.Join(ws.dir, "nope.json"))
	assert.Equal(t, exitFatal, code)

	var summary collector.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, collector.StateFatal, summary.State)
}

func TestCollectWithoutCredentialIsFatal(t *testing.T) {
	ws := setupFixtureEnv(t)
	t.Setenv("KICKBASE_PROVIDER", "kickbase")
	roster := testutil.WriteRoster(t, ws.dir, "1")

	code, stdout, stderr := runCLI(t, "collect", "-roster", roster)
	assert.Equal(t, exitFatal, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "collect failed")
}

func TestEventsThenAnalyze(t *testing.T) {
	ws := setupFixtureEnv(t)
	testutil.SeedDays(t, snapshots.NewDayStore(ws.dataDir), "7", map[int]json.RawMessage{
		1: testutil.DayDoc(testutil.Event{Code: 174, Points: 80}),
		3: testutil.DayDoc(testutil.Event{Code: 179, Points: 40}, testutil.Event{Code: 174, Points: 80}),
	})

	code, stdout, stderr := runCLI(t, "events", "-player", "7", "-from", "1", "-to", "3")
	require.Equal(t, exitOK, code, stderr.String())
	var res collector.DayRun
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, []int{1, 3}, res.Stored)
	assert.Equal(t, []int{2}, res.Skipped)

	code, stdout, stderr = runCLI(t, "analyze", "-player", "7", "-by-day", "-counts")
	require.Equal(t, exitOK, code, stderr.String())
	var out analysis
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, 200, out.Total)
	assert.Equal(t, "Tor (Mittelfeld)", out.Categories[0].Category)
	assert.Equal(t, 2, out.Counts["Tor (Mittelfeld)"])
	assert.Len(t, out.Days, 2)
}

func TestEventsUsageErrors(t *testing.T) {
	setupFixtureEnv(t)

	code, _, _ := runCLI(t, "events")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "events", "-player", "7", "-from", "5", "-to", "2")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "analyze", "-player", "7", "extra")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "analyze", "-bogus")
	assert.Equal(t, exitUsage, code)
}

func TestLoginWithoutCredentialsIsFatal(t *testing.T) {
	setupFixtureEnv(t)
	code, _, stderr := runCLI(t, "login")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr.String(), "login failed")
}

func TestLoginReportsWhetherTokenWasSaved(t *testing.T) {
	ws := setupFixtureEnv(t)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tkn":"abcdefghijklmnop"}`))
	}))
	t.Cleanup(api.Close)
	t.Setenv("KICKBASE_BASE_URL", api.URL)
	t.Setenv("KICKBASE_EMAIL", "me@example.com")
	t.Setenv("KICKBASE_PASSWORD", "pw")

	var out struct {
		Token string `json:"token"`
		Saved bool   `json:"saved"`
	}

	t.Setenv("KICKBASE_ENV_FILE", filepath.Join(ws.dir, "no-such-dir", ".env"))
	code, stdout, stderr := runCLI(t, "login", "-save")
	require.Equal(t, exitOK, code, stderr.String())
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "abcd****mnop", out.Token)
	assert.False(t, out.Saved)

	envFile := filepath.Join(ws.dir, "kickbase.env")
	t.Setenv("KICKBASE_ENV_FILE", envFile)
	code, stdout, stderr = runCLI(t, "login", "-save")
	require.Equal(t, exitOK, code, stderr.String())
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.True(t, out.Saved)
	assert.FileExists(t, envFile)
}

func TestServeStopsOnCancel(t *testing.T) {
	setupFixtureEnv(t)
	t.Setenv("PORT", "0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- run(ctx, []string{"serve"}, &stdout, &stderr)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeRunsScheduledCollection(t *testing.T) {
	ws := setupFixtureEnv(t, "1", "2")
	t.Setenv("PORT", "0")
	t.Setenv("KICKBASE_ROSTER_PATH", testutil.WriteRoster(t, ws.dir, "1", "2"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- run(ctx, []string{"serve", "-interval", "1h"}, &stdout, &stderr)
	}()

	store := snapshots.NewStore(ws.output, nil)
	require.Eventually(t, func() bool {
		rs, err := store.Load()
		return err == nil && rs.Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
