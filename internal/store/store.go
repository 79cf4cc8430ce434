// Package store provides the favorites/history persistence layer: a
// local file-backed store for anonymous use and a per-user cloud store
// backed by PostgreSQL, behind shared interfaces.
package store

import "github.com/anon381/Movie-Search-App/internal/models"

// FavoritesStore is the uniform contract over favorite persistence.
// Toggling is idempotent in effect: each call performs one transition
// between member and non-member.
type FavoritesStore interface {
	List() []models.FavoriteEntry
	Contains(id string) bool
	Toggle(item models.FavoriteEntry) error
}

// HistoryStore records executed searches for an authenticated user.
type HistoryStore interface {
	List() []models.HistoryEntry
	Log(entry models.HistoryEntry) error
}

// Merge implements the display rule for dual-store favorites: cloud
// entries take precedence the moment the cloud holds at least one; while
// the cloud set is empty (confirmed or not), local entries stay visible
// so the view never flashes empty before the cloud fetch or migration
// completes.
func Merge(cloudConfirmed bool, cloud, local []models.FavoriteEntry) []models.FavoriteEntry {
	if cloudConfirmed && len(cloud) > 0 {
		return cloud
	}
	if len(cloud) > 0 {
		return cloud
	}
	return local
}
