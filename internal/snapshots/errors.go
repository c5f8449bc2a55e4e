package snapshots

import "errors"

var (
	// ErrNotFound means no artifact exists yet. Callers usually start fresh.
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorruptData means an artifact exists but cannot be parsed.
	ErrCorruptData = errors.New("snapshot corrupt")
)
