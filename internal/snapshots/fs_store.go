package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/timeutil"
)

// Store persists a ResultSet at a single canonical path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore constructs a file-backed result store. A nil clock uses time.Now.
func NewStore(path string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{path: path, now: now}
}

// Path exposes the canonical artifact location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save stamps the capture date and count and replaces the artifact atomically.
func (s *Store) Save(rs ResultSet) error {
	_, err := s.save(rs)
	return err
}

// SaveChanged is Save, additionally reporting whether bytes on disk changed.
func (s *Store) SaveChanged(rs ResultSet) (bool, error) {
	return s.save(rs)
}

func (s *Store) save(rs ResultSet) (bool, error) {
	if s == nil || s.path == "" {
		return false, errors.New("result store not configured")
	}
	if rs.Players == nil {
		rs.Players = map[string]json.RawMessage{}
	}
	rs.Date = timeutil.FormatDate(s.now().UTC())
	rs.Count = len(rs.Players)

	changed, err := writeJSON(s.path, rs)
	if err != nil {
		return false, fmt.Errorf("save %s: %w", s.path, err)
	}
	return changed, nil
}

// Load reads the artifact. It returns ErrNotFound when nothing was saved yet
// and ErrCorruptData when the file cannot be parsed.
func (s *Store) Load() (ResultSet, error) {
	if s == nil || s.path == "" {
		return ResultSet{}, errors.New("result store not configured")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ResultSet{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return ResultSet{}, err
	}

	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return ResultSet{}, fmt.Errorf("%w: %s: %v", ErrCorruptData, s.path, err)
	}
	if rs.Players == nil {
		rs.Players = make(map[string]json.RawMessage)
	}
	rs.Count = len(rs.Players)
	return rs, nil
}
