package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// LocalFavorites persists favorites in a JSON file under a fixed
// namespace key. Corrupt or missing data degrades to an empty store.
// Every mutation is written through immediately.
type LocalFavorites struct {
	fs   afero.Fs
	path string

	mu      sync.Mutex
	entries map[string]models.FavoriteEntry
}

// NewLocalFavorites opens (or initializes) the local store at path.
func NewLocalFavorites(fs afero.Fs, path string) *LocalFavorites {
	s := &LocalFavorites{
		fs:      fs,
		path:    path,
		entries: make(map[string]models.FavoriteEntry),
	}
	s.load()
	return s
}

func (s *LocalFavorites) load() {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return
	}
	var entries map[string]models.FavoriteEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt file: start empty rather than failing.
		return
	}
	s.entries = entries
	if s.entries == nil {
		s.entries = make(map[string]models.FavoriteEntry)
	}
}

// List returns all entries, sorted by title for stable display.
func (s *LocalFavorites) List() []models.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FavoriteEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Contains reports membership for id.
func (s *LocalFavorites) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Toggle adds the item if absent, removes it if present, and persists
// the result immediately.
func (s *LocalFavorites) Toggle(item models.FavoriteEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[item.ID]; ok {
		delete(s.entries, item.ID)
	} else {
		s.entries[item.ID] = item
	}
	return s.persistLocked()
}

func (s *LocalFavorites) persistLocked() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create favorites directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}
