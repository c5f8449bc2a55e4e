package store

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

// Source is the on-disk result artifact the cache sits in front of.
type Source interface {
	Load() (snapshots.ResultSet, error)
	Path() string
}

// MemoryStore keeps a thread-safe copy of the last loaded result set and
// reloads it only when the artifact's size or modification time changes.
type MemoryStore struct {
	src  Source
	stat func(string) (os.FileInfo, error)

	mu      sync.RWMutex
	rs      snapshots.ResultSet
	modTime time.Time
	size    int64
	loaded  bool
}

// NewMemoryStore constructs an empty MemoryStore over src.
func NewMemoryStore(src Source) *MemoryStore {
	return &MemoryStore{
		src:  src,
		stat: os.Stat,
	}
}

// Load returns the cached result set, refreshing it first if the artifact
// changed. A missing artifact drops the cache and reports snapshots.ErrNotFound.
func (s *MemoryStore) Load() (snapshots.ResultSet, error) {
	info, err := s.stat(s.src.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.reset()
			return snapshots.ResultSet{}, snapshots.ErrNotFound
		}
		return snapshots.ResultSet{}, err
	}

	s.mu.RLock()
	if s.loaded && s.size == info.Size() && s.modTime.Equal(info.ModTime()) {
		rs := s.rs
		s.mu.RUnlock()
		return rs, nil
	}
	s.mu.RUnlock()

	rs, err := s.src.Load()
	if err != nil {
		return snapshots.ResultSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = rs
	s.size = info.Size()
	s.modTime = info.ModTime()
	s.loaded = true
	return rs, nil
}

// Path reports the artifact backing the cache.
func (s *MemoryStore) Path() string {
	return s.src.Path()
}

func (s *MemoryStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = snapshots.ResultSet{}
	s.loaded = false
}
