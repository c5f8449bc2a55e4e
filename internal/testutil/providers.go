package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/preston-bernstein/kickbase-collector/internal/providers"
)

// StaticSource serves canned documents. Unknown ids answer ErrNoResult.
type StaticSource struct {
	Players map[string]json.RawMessage
	Days    map[string]map[int]json.RawMessage

	mu    sync.Mutex
	calls int
}

func (s *StaticSource) FetchPlayer(ctx context.Context, playerID string) (json.RawMessage, error) {
	s.count()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc, ok := s.Players[playerID]; ok {
		return doc, nil
	}
	return nil, providers.ErrNoResult
}

func (s *StaticSource) FetchPlayerDay(ctx context.Context, playerID string, day int) (json.RawMessage, error) {
	s.count()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc, ok := s.Days[playerID][day]; ok {
		return doc, nil
	}
	return nil, providers.ErrNoResult
}

// Calls reports how many fetches were made.
func (s *StaticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StaticSource) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

// ErrSource always returns Err.
type ErrSource struct {
	Err error
}

func (s ErrSource) FetchPlayer(context.Context, string) (json.RawMessage, error) {
	return nil, s.Err
}

func (s ErrSource) FetchPlayerDay(context.Context, string, int) (json.RawMessage, error) {
	return nil, s.Err
}

// UnauthorizedSource rejects every call with an AuthError.
type UnauthorizedSource struct{}

func (UnauthorizedSource) FetchPlayer(context.Context, string) (json.RawMessage, error) {
	return nil, &providers.AuthError{Provider: "test", StatusCode: 401}
}

func (UnauthorizedSource) FetchPlayerDay(context.Context, string, int) (json.RawMessage, error) {
	return nil, &providers.AuthError{Provider: "test", StatusCode: 401}
}
