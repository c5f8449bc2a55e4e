package events

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

func newTestAggregator(t *testing.T) (*Aggregator, *snapshots.DayStore) {
	t.Helper()
	store := snapshots.NewDayStore(t.TempDir())
	return NewAggregator(store, Categories{1: "Goal", 2: "Assist"}, nil), store
}

func TestAggregatorMergeDayPersistsAndReplaces(t *testing.T) {
	agg, store := newTestAggregator(t)

	require.NoError(t, agg.MergeDay("42", 6, dayDoc(`[{"eti":1,"p":10}]`)))
	require.NoError(t, agg.MergeDay("42", 9, dayDoc(`[{"eti":2,"p":4}]`)))
	require.NoError(t, agg.MergeDay("42", 6, dayDoc(`[{"eti":1,"p":3}]`)))

	days, err := store.LoadSummary("42")
	require.NoError(t, err)
	assert.Len(t, days, 2)

	raw, err := store.LoadDay("42", 6)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"eti":1,"p":3}]}`, string(raw))

	total, err := agg.AggregateRange("42", 5, 10)
	require.NoError(t, err)
	assert.Equal(t, Aggregate{"Goal": 3, "Assist": 4}, total)

	byDay, err := agg.AggregateDays("42", 1, 34)
	require.NoError(t, err)
	assert.Equal(t, map[int]Aggregate{6: {"Goal": 3}, 9: {"Assist": 4}}, byDay)

	counts, err := agg.Counts("42", 1, 34)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Goal": 1, "Assist": 1}, counts)
}

func TestAggregatorUnknownPlayerIsEmpty(t *testing.T) {
	agg, _ := newTestAggregator(t)

	total, err := agg.AggregateRange("nobody", 1, 34)
	require.NoError(t, err)
	assert.Empty(t, total)
}

func TestAggregatorRebuildsCorruptSummary(t *testing.T) {
	agg, store := newTestAggregator(t)
	require.NoError(t, os.MkdirAll(snapshots.PlayerDir(store.Dir(), "7"), 0o755))
	require.NoError(t, os.WriteFile(snapshots.SummaryPath(store.Dir(), "7"), []byte("{"), 0o644))

	_, err := agg.AggregateRange("7", 1, 2)
	assert.ErrorIs(t, err, snapshots.ErrCorruptData)

	require.NoError(t, agg.MergeDay("7", 1, dayDoc(`[{"eti":1,"p":2}]`)))
	total, err := agg.AggregateRange("7", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Aggregate{"Goal": 2}, total)
}

func TestNewAggregatorDefaultsCategories(t *testing.T) {
	agg := NewAggregator(snapshots.NewDayStore(t.TempDir()), nil, nil)
	assert.Equal(t, "Tor (Stürmer)", agg.Categories().Name(176))
	assert.NoError(t, agg.MergeDay("1", 1, json.RawMessage(`{"events":[]}`)))
}
