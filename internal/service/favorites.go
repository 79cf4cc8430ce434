// Package service composes providers, stores and the session manager
// into the operations the transport layer exposes.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/store"
)

// FavoritesService is the composition root for favorites: it selects the
// local or cloud store based on the caller's identity, applies the merge
// policy for display, and runs the one-time local-to-cloud migration.
// The user id comes from the request's bearer token, never from shared
// process state, so concurrent callers cannot read or write each
// other's favorites.
type FavoritesService struct {
	local   store.FavoritesStore
	favRepo store.FavoritesBackend

	mu       sync.Mutex
	clouds   map[string]*store.CloudFavorites
	migrated map[string]bool
}

// NewFavoritesService creates the selector over the given stores.
func NewFavoritesService(local store.FavoritesStore, favRepo store.FavoritesBackend) *FavoritesService {
	return &FavoritesService{
		local:    local,
		favRepo:  favRepo,
		clouds:   make(map[string]*store.CloudFavorites),
		migrated: make(map[string]bool),
	}
}

// List returns the favorites to display. For an authenticated caller,
// cloud entries win the moment the cloud set is non-empty; until the
// cloud fetch is confirmed, local entries remain visible. A cloud fetch
// failure is returned alongside the local fallback so the UI can render
// both. An empty userID is the anonymous caller.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
	cloud, err := s.activeCloud(userID)
	if cloud == nil {
		return s.local.List(), err
	}
	return store.Merge(cloud.Loaded(), cloud.List(), s.local.List()), err
}

// Toggle routes the mutation to whichever store the caller selects.
func (s *FavoritesService) Toggle(ctx context.Context, userID string, item models.FavoriteEntry) error {
	cloud, err := s.activeCloud(userID)
	if cloud != nil {
		return cloud.Toggle(item)
	}
	if err != nil {
		return err
	}
	return s.local.Toggle(item)
}

// Contains reports membership in the caller's active store.
func (s *FavoritesService) Contains(userID, id string) bool {
	cloud, _ := s.activeCloud(userID)
	if cloud != nil && cloud.Loaded() {
		return cloud.Contains(id)
	}
	return s.local.Contains(id)
}

// activeCloud returns the cloud store for userID, creating and loading
// it on first use, and runs the migration check exactly once per user.
// Anonymous callers (empty userID) get nil.
func (s *FavoritesService) activeCloud(userID string) (*store.CloudFavorites, error) {
	if userID == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cloud, ok := s.clouds[userID]
	if !ok {
		cloud = store.NewCloudFavorites(s.favRepo, userID)
		s.clouds[userID] = cloud
	}

	if !cloud.Loaded() {
		if err := cloud.Load(); err != nil {
			return cloud, err
		}
	}

	// One migration per user, and only when the cloud set is confirmed
	// empty at check time: never overwrite existing cloud data, and
	// never re-run even if local favorites change afterward.
	if !s.migrated[userID] {
		s.migrated[userID] = true
		if len(cloud.List()) == 0 {
			s.migrateLocked(cloud)
		}
	}

	return cloud, nil
}

// migrateLocked copies every local favorite into the cloud store
// sequentially. Individual failures are swallowed; migration is
// best-effort and never blocks.
func (s *FavoritesService) migrateLocked(cloud *store.CloudFavorites) {
	entries := s.local.List()
	if len(entries) == 0 {
		return
	}
	migrated := 0
	for _, e := range entries {
		if err := cloud.Put(e); err != nil {
			slog.Warn("favorite migration failed", "id", e.ID, "error", err)
			continue
		}
		migrated++
	}
	slog.Info("migrated local favorites to cloud", "count", migrated, "total", len(entries))
}
