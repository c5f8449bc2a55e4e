package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

type daySummaryFile struct {
	Days map[string]json.RawMessage `json:"days"`
}

// DayStore keeps one raw document per player per match day, plus a
// per-player summary holding every day fetched so far.
type DayStore struct {
	dataDir string
}

// NewDayStore roots a DayStore at dataDir.
func NewDayStore(dataDir string) *DayStore {
	return &DayStore{dataDir: dataDir}
}

// Dir exposes the data root.
func (s *DayStore) Dir() string {
	return s.dataDir
}

// WriteDay persists the raw document for a single day.
func (s *DayStore) WriteDay(playerID string, day int, doc json.RawMessage) error {
	if err := ValidatePlayerID(playerID); err != nil {
		return err
	}
	if !json.Valid(doc) {
		return fmt.Errorf("player %s day %d: %w", playerID, day, ErrCorruptData)
	}
	if _, err := writeAtomic(DayPath(s.dataDir, playerID, day), append(append([]byte{}, doc...), '\n')); err != nil {
		return fmt.Errorf("write day %d for player %s: %w", day, playerID, err)
	}
	return nil
}

// SaveSummary replaces the summary file with days and refreshes the manifest.
func (s *DayStore) SaveSummary(playerID string, days map[int]json.RawMessage) error {
	if err := ValidatePlayerID(playerID); err != nil {
		return err
	}
	file := daySummaryFile{Days: make(map[string]json.RawMessage, len(days))}
	for day, doc := range days {
		file.Days[strconv.Itoa(day)] = doc
	}
	if _, err := writeJSON(SummaryPath(s.dataDir, playerID), file); err != nil {
		return fmt.Errorf("write summary for player %s: %w", playerID, err)
	}
	return s.updateManifest(playerID, days)
}

// LoadSummary returns every stored day for playerID keyed by day number.
func (s *DayStore) LoadSummary(playerID string) (map[int]json.RawMessage, error) {
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	path := SummaryPath(s.dataDir, playerID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	var file daySummaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptData, path, err)
	}
	days := make(map[int]json.RawMessage, len(file.Days))
	for key, doc := range file.Days {
		day, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: day key %q", ErrCorruptData, path, key)
		}
		days[day] = doc
	}
	return days, nil
}

// LoadDay returns the raw document for one day.
func (s *DayStore) LoadDay(playerID string, day int) (json.RawMessage, error) {
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	path := DayPath(s.dataDir, playerID, day)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptData, path)
	}
	return json.RawMessage(data), nil
}

// ListPlayers returns the ids of every player that has a directory under the data root.
func (s *DayStore) ListPlayers() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), playerDirPrefix) {
			continue
		}
		if id := strings.TrimPrefix(e.Name(), playerDirPrefix); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
