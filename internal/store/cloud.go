package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// FavoritesBackend is the row-level persistence CloudFavorites mirrors
// into. Satisfied by *repository.FavoritesRepository.
type FavoritesBackend interface {
	ListByUser(userID string) ([]models.FavoriteEntry, error)
	Upsert(userID string, e models.FavoriteEntry) error
	Delete(userID, movieID string) error
}

// HistoryBackend is the row-level persistence CloudHistory appends to.
// Satisfied by *repository.HistoryRepository.
type HistoryBackend interface {
	ListByUser(userID string, limit int) ([]models.HistoryEntry, error)
	Insert(userID string, e models.HistoryEntry) (int64, error)
}

// CloudFavorites is the per-user, Postgres-backed favorites store. State
// is held in memory after Load; Toggle applies the in-memory change
// before the remote write and does not roll it back on write failure.
type CloudFavorites struct {
	repo   FavoritesBackend
	userID string

	mu      sync.Mutex
	loaded  bool
	entries map[string]models.FavoriteEntry
}

// NewCloudFavorites creates a cloud favorites store for one user.
func NewCloudFavorites(repo FavoritesBackend, userID string) *CloudFavorites {
	return &CloudFavorites{
		repo:    repo,
		userID:  userID,
		entries: make(map[string]models.FavoriteEntry),
	}
}

// Load fetches all rows for the user. Until Load succeeds the store is
// unconfirmed: callers must not treat an empty set as authoritative.
func (s *CloudFavorites) Load() error {
	entries, err := s.repo.ListByUser(s.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]models.FavoriteEntry, len(entries))
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	s.loaded = true
	return nil
}

// Loaded reports whether the remote fetch has completed, i.e. whether an
// empty set is confirmed rather than merely not-yet-fetched.
func (s *CloudFavorites) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// List returns all entries, sorted by title for stable display.
func (s *CloudFavorites) List() []models.FavoriteEntry {
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
func (s *CloudFavorites) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Toggle optimistically updates memory, then mirrors the change with a
// delete or upsert keyed by (user, movie). A failed write leaves the
// optimistic state in place; the error is surfaced for logging only.
func (s *CloudFavorites) Toggle(item models.FavoriteEntry) error {
	s.mu.Lock()
	_, existed := s.entries[item.ID]
	if existed {
		delete(s.entries, item.ID)
	} else {
		s.entries[item.ID] = item
	}
	s.mu.Unlock()

	if existed {
		return s.repo.Delete(s.userID, item.ID)
	}
	return s.repo.Upsert(s.userID, item)
}

// Put inserts a single favorite remotely and in memory. Used by the
// local-to-cloud migration; unlike Toggle it never removes.
func (s *CloudFavorites) Put(item models.FavoriteEntry) error {
	if err := s.repo.Upsert(s.userID, item); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[item.ID] = item
	s.mu.Unlock()
	return nil
}

// CloudHistory is the per-user search history store. Load fetches the
// newest entries; Log inserts unless the duplicate-suppression window
// applies, then optimistically prepends capped to the history limit.
type CloudHistory struct {
	repo   HistoryBackend
	userID string
	now    func() time.Time

	mu      sync.Mutex
	entries []models.HistoryEntry
	lastKey string
	lastAt  time.Time
}

// NewCloudHistory creates a history store for one user.
func NewCloudHistory(repo HistoryBackend, userID string) *CloudHistory {
	return &CloudHistory{repo: repo, userID: userID, now: time.Now}
}

// Load fetches the most recent entries, newest first.
func (s *CloudHistory) Load() error {
	entries, err := s.repo.ListByUser(s.userID, models.HistoryLimit)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// List returns the in-memory view, newest first.
func (s *CloudHistory) List() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Log records a search. Repeats of the same (query, year, type, count)
// tuple within the suppression window are skipped silently to avoid
// noise from rapid re-triggers.
func (s *CloudHistory) Log(entry models.HistoryEntry) error {
	if len(entry.Query) < models.MinQueryLen {
		return nil
	}

	key := entry.DedupeKey()
	now := s.now()

	s.mu.Lock()
	if s.lastKey == key && now.Sub(s.lastAt) < models.HistoryDedupeWindow {
		s.mu.Unlock()
		return nil
	}
	s.lastKey = key
	s.lastAt = now
	s.mu.Unlock()

	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = now
	}
	id, err := s.repo.Insert(s.userID, entry)
	if err != nil {
		slog.Error("failed to log search history", "error", err)
		return err
	}
	entry.ID = id

	s.mu.Lock()
	s.entries = append([]models.HistoryEntry{entry}, s.entries...)
	if len(s.entries) > models.HistoryLimit {
		s.entries = s.entries[:models.HistoryLimit]
	}
	s.mu.Unlock()
	return nil
}
