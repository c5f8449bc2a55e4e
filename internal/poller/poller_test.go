package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/testutil"
)

type countingJob struct {
	calls  atomic.Int32
	notify chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

func (j *countingJob) run(ctx context.Context) error {
	j.calls.Add(1)
	if j.notify != nil {
		j.once.Do(func() { close(j.notify) })
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *countingJob) setErr(err error) {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()
}

func TestPollerRunsImmediatelyAndOnTicks(t *testing.T) {
	job := &countingJob{notify: make(chan struct{})}
	p := New(job.run, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	select {
	case <-job.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial cycle")
	}

	time.Sleep(50 * time.Millisecond)
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	if job.calls.Load() < 2 {
		t.Fatalf("expected initial and ticked cycles, got %d", job.calls.Load())
	}
	if got := p.Status().Cycles; got != int(job.calls.Load()) {
		t.Fatalf("expected status cycles %d, got %d", job.calls.Load(), got)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	job := &countingJob{notify: make(chan struct{})}
	p := New(job.run, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)
	<-job.notify
	cancel()

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	callsAfterStop := job.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if job.calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional cycles after stop; before=%d after=%d", callsAfterStop, job.calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New((&countingJob{}).run, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	job := &countingJob{notify: make(chan struct{})}
	p := New(job.run, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx)
	<-job.notify

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	if got := job.calls.Load(); got != 1 {
		t.Fatalf("expected a single cycle, got %d", got)
	}
}

func TestPollerStopWaitsForInFlightCycle(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	p := New(func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}, nil, time.Hour)

	p.Start(context.Background())
	<-entered

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := p.Stop(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while cycle runs, got %v", err)
	}

	close(release)
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("expected clean stop after release, got %v", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New((&countingJob{}).run, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	job := &countingJob{err: errors.New("boom")}
	logger, buf := testutil.NewBufferLogger()
	p := New(job.run, logger, time.Hour)
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	p.now = testutil.NowAt(at)

	for i := 0; i < readyFailures; i++ {
		p.runOnce(context.Background())
	}
	status := p.Status()
	if status.ConsecutiveFailures != readyFailures {
		t.Fatalf("expected %d failures, got %d", readyFailures, status.ConsecutiveFailures)
	}
	if status.LastError != "boom" {
		t.Fatalf("expected last error recorded, got %q", status.LastError)
	}
	if status.IsReady() {
		t.Fatalf("expected not ready before any success")
	}

	job.setErr(nil)
	p.runOnce(context.Background())
	status = p.Status()
	if status.ConsecutiveFailures != 0 || status.LastError != "" {
		t.Fatalf("expected failures reset, got %+v", status)
	}
	if !status.LastSuccess.Equal(at) {
		t.Fatalf("expected success timestamp %v, got %v", at, status.LastSuccess)
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}

	job.setErr(errors.New("again"))
	for i := 0; i < readyFailures; i++ {
		p.runOnce(context.Background())
	}
	if p.Status().IsReady() {
		t.Fatalf("expected not ready after repeated failures")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected cycles to be logged")
	}
}
