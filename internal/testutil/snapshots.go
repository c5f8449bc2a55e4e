package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

// NewTempStore returns a result store in a temp dir with a fixed clock.
func NewTempStore(t *testing.T, now time.Time) *snapshots.Store {
	t.Helper()
	return snapshots.NewStore(filepath.Join(t.TempDir(), "players.json"), NowAt(now))
}

// SeedResults saves a result set holding PlayerDoc for each id.
func SeedResults(t *testing.T, store *snapshots.Store, ids ...string) snapshots.ResultSet {
	t.Helper()
	rs := snapshots.NewResultSet()
	for _, id := range ids {
		rs.Put(id, PlayerDoc(id))
	}
	if err := store.Save(rs); err != nil {
		t.Fatalf("seed results: %v", err)
	}
	return rs
}

// NewTempDayStore returns a day store rooted in a temp dir.
func NewTempDayStore(t *testing.T) *snapshots.DayStore {
	t.Helper()
	return snapshots.NewDayStore(t.TempDir())
}

// SeedDays writes each day document and the matching summary for playerID.
func SeedDays(t *testing.T, store *snapshots.DayStore, playerID string, days map[int]json.RawMessage) {
	t.Helper()
	for day, doc := range days {
		if err := store.WriteDay(playerID, day, doc); err != nil {
			t.Fatalf("seed day %d: %v", day, err)
		}
	}
	if err := store.SaveSummary(playerID, days); err != nil {
		t.Fatalf("seed summary: %v", err)
	}
}
