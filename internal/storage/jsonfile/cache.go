package jsonfile

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/honeycarbs/hhnotify/internal/repository"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

var _ repository.CacheRepository = (*CacheStore)(nil)

// CacheStore is the dedup cache persisted as an ordered JSON array of IDs
type CacheStore struct {
	path   string
	logger *logging.Logger

	mu    sync.Mutex
	ids   []string
	index map[string]struct{}
}

// OpenCacheStore loads path; a missing or malformed file starts an empty cache
func OpenCacheStore(path string, logger *logging.Logger) *CacheStore {
	s := &CacheStore{
		path:   path,
		logger: logger,
		index:  make(map[string]struct{}),
	}

	for _, id := range s.read() {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}

	logger.Info("dedup cache loaded", "path", path, "size", len(s.ids))
	return s
}

func (s *CacheStore) read() []string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("cache file not found, starting empty", "path", s.path)
		} else {
			s.logger.Warn("failed to read cache file", "path", s.path, "err", err)
		}
		return nil
	}

	// ids are historically numeric strings, but tolerate bare numbers too
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("cache file is not an array, starting empty", "path", s.path, "err", err)
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			if id != "" {
				out = append(out, id)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, n.String())
		}
	}
	return out
}

func (s *CacheStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]
	return ok
}

// Add records id and flushes the whole cache to disk. The in-memory entry
// survives a failed flush.
func (s *CacheStore) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return nil
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)

	if err := writeJSON(s.path, s.ids); err != nil {
		return err
	}
	s.logger.Debug("dedup cache saved", "size", len(s.ids))
	return nil
}

func (s *CacheStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = []string{}
	s.index = make(map[string]struct{})

	if err := writeJSON(s.path, s.ids); err != nil {
		return err
	}
	s.logger.Info("dedup cache cleared", "path", s.path)
	return nil
}

func (s *CacheStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}
