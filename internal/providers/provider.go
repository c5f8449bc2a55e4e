package providers

import (
	"context"
	"encoding/json"
)

// PlayerSource fetches the raw detail document for one player.
// Documents are returned verbatim so they can be persisted unchanged.
type PlayerSource interface {
	FetchPlayer(ctx context.Context, playerID string) (json.RawMessage, error)
}

// EventSource fetches the raw event document for one player on one match day.
type EventSource interface {
	FetchPlayerDay(ctx context.Context, playerID string, day int) (json.RawMessage, error)
}

// Source combines all provider capabilities.
type Source interface {
	PlayerSource
	EventSource
}
