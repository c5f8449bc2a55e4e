package providers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthErrorMatchesUnauthorized(t *testing.T) {
	err := fmt.Errorf("validate: %w", &AuthError{StatusCode: 403})
	assert.True(t, IsAuth(err))
	assert.Equal(t, "credential rejected (status=403)", (&AuthError{StatusCode: 403}).Error())
	assert.Equal(t, "login rejected", (&AuthError{Message: "login rejected"}).Error())
}

func TestAsRateLimitError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", &RateLimitError{StatusCode: 429, RetryAfter: time.Second})
	rl, ok := AsRateLimitError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, time.Second, rl.RetryAfter)
	assert.Equal(t, "provider rate limited (status=429)", rl.Error())

	_, ok = AsRateLimitError(errors.New("other"))
	assert.False(t, ok)
}

func TestTransientErrorWrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := &TransientError{Target: "player 1", StatusCode: 500, Err: cause}

	assert.ErrorIs(t, err, ErrNoResult)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch player 1: status 500: timeout", err.Error())
	assert.Equal(t, "fetch player 1: timeout", (&TransientError{Target: "player 1", Err: cause}).Error())
}

func TestAsTransientKeepsExistingTransientError(t *testing.T) {
	orig := &TransientError{Target: "player 1", StatusCode: 502, Err: errors.New("bad gateway")}
	assert.Same(t, orig, asTransient("player 1", orig))

	converted := asTransient("player 2", errors.New("eof"))
	var te *TransientError
	assert.ErrorAs(t, converted, &te)
	assert.Equal(t, "player 2", te.Target)
}

func TestAuthErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("no credentials configured")
	err := &AuthError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "no credentials configured", err.Error())
}
