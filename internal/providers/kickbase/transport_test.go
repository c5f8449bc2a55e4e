package kickbase

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURLTrimsTrailingSlashAndDefaults(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", defaultBaseURL},
		{"  ", defaultBaseURL},
		{"https://api.example.com/", "https://api.example.com"},
		{"https://api.example.com", "https://api.example.com"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, normalizeBaseURL(c.input))
	}
}

func TestResolveHTTPClientDefaultsTimeout(t *testing.T) {
	client, ok := resolveHTTPClient(nil, 0).(*http.Client)
	if assert.True(t, ok) {
		assert.Equal(t, defaultHTTPTimeout, client.Timeout)
	}

	client, ok = resolveHTTPClient(nil, 5*time.Second).(*http.Client)
	if assert.True(t, ok) {
		assert.Equal(t, 5*time.Second, client.Timeout)
	}
}

func TestResolveHTTPClientUsesProvidedClient(t *testing.T) {
	custom := &http.Client{Timeout: 5 * time.Second}
	assert.Same(t, custom, resolveHTTPClient(custom, time.Minute))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30*time.Second, parseRetryAfter("30", now))
	assert.Zero(t, parseRetryAfter("", now))
	assert.Zero(t, parseRetryAfter("-5", now))
	assert.Zero(t, parseRetryAfter("soon", now))
	assert.Equal(t, 2*time.Minute, parseRetryAfter(now.Add(2*time.Minute).Format(http.TimeFormat), now))
	assert.Zero(t, parseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
}

func TestParseExpiry(t *testing.T) {
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), parseExpiry("2026-03-04T05:06:07Z"))
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), parseExpiry("2026-03-04T05:06:07"))
	assert.True(t, parseExpiry("").IsZero())
	assert.True(t, parseExpiry("tomorrow").IsZero())
}
