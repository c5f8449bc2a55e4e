package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastCooldown    time.Duration
	lastCallLatency time.Duration
}

type checkpointStats struct {
	writes    int
	failures  int
	lastCount int
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// checkpoints, mirrored into OpenTelemetry instruments when configured.
type Recorder struct {
	mu          sync.Mutex
	stats       map[string]*providerStats
	checkpoints checkpointStats
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		otel:  otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks a 429 and the cooldown applied before the retry.
func (r *Recorder) RecordRateLimit(provider string, cooldown time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if cooldown > 0 {
		stats.lastCooldown = cooldown
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, cooldown)
	}
}

// RecordCheckpoint tracks a durable write of the result set.
func (r *Recorder) RecordCheckpoint(count int, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if err != nil {
		r.checkpoints.failures++
	} else {
		r.checkpoints.writes++
		r.checkpoints.lastCount = count
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCheckpoint(count, duration, err)
	}
}

// RecordTarget tracks the outcome of one collection target (OutcomeSucceeded or OutcomeFailed).
func (r *Recorder) RecordTarget(outcome string) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordTarget(outcome)
}

// RecordHTTPRequest tracks one served request under its route pattern.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, route, status, duration)
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastCooldown returns the most recent cooldown applied for a provider.
func (r *Recorder) LastCooldown(provider string) time.Duration {
	return r.Snapshot(provider).LastCooldown
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Checkpoints returns successful and failed checkpoint writes.
func (r *Recorder) Checkpoints() (writes, failures int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkpoints.writes, r.checkpoints.failures
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastCooldown    time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastCooldown:    stats.lastCooldown,
		LastCallLatency: stats.lastCallLatency,
	}
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}
