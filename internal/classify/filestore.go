package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rnodetools/rnodectl/internal/radio"
)

// FileStore persists the classification map as a small JSON blob on disk.
// Writes go through a temp file and rename so a crash mid-write cannot
// leave a truncated blob behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored map. A missing file is an empty cache, not an error.
func (s *FileStore) Load() (map[string]radio.LinkType, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]radio.LinkType{}, nil
		}
		return nil, err
	}

	entries := map[string]radio.LinkType{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("malformed classification blob %s: %w", s.path, err)
	}
	return entries, nil
}

// Save atomically replaces the stored map.
func (s *FileStore) Save(entries map[string]radio.LinkType) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MemoryStore is an in-memory Persistence for tests and ephemeral sessions.
type MemoryStore struct {
	entries map[string]radio.LinkType
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]radio.LinkType{}}
}

// Load returns a copy of the held map.
func (s *MemoryStore) Load() (map[string]radio.LinkType, error) {
	out := make(map[string]radio.LinkType, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Save replaces the held map.
func (s *MemoryStore) Save(entries map[string]radio.LinkType) error {
	out := make(map[string]radio.LinkType, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	s.entries = out
	return nil
}
