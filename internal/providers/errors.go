package providers

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized marks a rejected or missing credential. It is fatal for a run.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoResult marks a per-target failure; the caller skips the target and moves on.
	ErrNoResult = errors.New("no result")
	// ErrProviderUnavailable is returned when a wrapper has nothing to delegate to.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// AuthError captures 401/403 responses and rejected login exchanges.
type AuthError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "credential rejected"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// TransientError wraps any failure that only affects the current target:
// timeouts, unexpected statuses, malformed bodies.
type TransientError struct {
	Target     string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Target, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Is(target error) bool {
	return target == ErrNoResult
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// IsAuth reports whether err means the credential itself is bad.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func asTransient(target string, err error) error {
	var te *TransientError
	if errors.As(err, &te) {
		return err
	}
	return &TransientError{Target: target, Err: err}
}
