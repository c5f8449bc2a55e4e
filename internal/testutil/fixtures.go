package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PlayerDoc returns a minimal player document for id.
func PlayerDoc(id string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"i":%q,"n":"Player %s","tid":"2"}`, id, id))
}

// Event is one scoring event inside a day document.
type Event struct {
	Code   int
	Points int
}

// DayDoc renders a day document carrying the given events.
func DayDoc(events ...Event) json.RawMessage {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, fmt.Sprintf(`{"eti":%d,"p":%d}`, ev.Code, ev.Points))
	}
	return json.RawMessage(`{"events":[` + strings.Join(parts, ",") + `]}`)
}

// WriteRoster writes a roster artifact listing ids in order and returns its path.
func WriteRoster(t *testing.T, dir string, ids ...string) string {
	t.Helper()
	entries := make([]string, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, fmt.Sprintf(`%q:{}`, id))
	}
	path := filepath.Join(dir, "roster.json")
	body := `{"players":{` + strings.Join(entries, ",") + `}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}
