package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Manifest indexes which days are stored for each player.
type Manifest struct {
	Version int              `json:"version"`
	Players map[string][]int `json:"players"`
}

func defaultManifest() Manifest {
	return Manifest{
		Version: 1,
		Players: map[string][]int{},
	}
}

// Manifest reads the day index. A missing manifest yields an empty one.
func (s *DayStore) Manifest() (Manifest, error) {
	path := filepath.Join(s.dataDir, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultManifest(), nil
		}
		return defaultManifest(), err
	}
	m := defaultManifest()
	if err := json.Unmarshal(data, &m); err != nil {
		return defaultManifest(), fmt.Errorf("%w: %s: %v", ErrCorruptData, path, err)
	}
	if m.Players == nil {
		m.Players = map[string][]int{}
	}
	return m, nil
}

func (s *DayStore) updateManifest(playerID string, days map[int]json.RawMessage) error {
	m, err := s.Manifest()
	if err != nil && !errors.Is(err, ErrCorruptData) {
		return err
	}
	m.Players[playerID] = sortedDays(days)
	_, err = writeJSON(filepath.Join(s.dataDir, manifestName), m)
	return err
}

func sortedDays(days map[int]json.RawMessage) []int {
	out := make([]int, 0, len(days))
	for day := range days {
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}
