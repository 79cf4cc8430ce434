package repository

import (
	"database/sql"
	"fmt"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// FavoritesRepository handles database operations for cloud favorites.
type FavoritesRepository struct {
	db *sql.DB
}

// NewFavoritesRepository creates a new FavoritesRepository.
func NewFavoritesRepository(db *sql.DB) *FavoritesRepository {
	return &FavoritesRepository{db: db}
}

// ListByUser returns all favorites for a user.
func (r *FavoritesRepository) ListByUser(userID string) ([]models.FavoriteEntry, error) {
	rows, err := r.db.Query(`
		SELECT movie_id, COALESCE(title, ''), COALESCE(poster, '')
		FROM favorites WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	entries := make([]models.FavoriteEntry, 0)
	for rows.Next() {
		var e models.FavoriteEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.PosterURL); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert inserts or refreshes a favorite keyed by (user, movie).
func (r *FavoritesRepository) Upsert(userID string, e models.FavoriteEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO favorites (user_id, movie_id, title, poster)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			title = EXCLUDED.title,
			poster = EXCLUDED.poster
	`, userID, e.ID, e.Title, e.PosterURL)
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

// Delete removes a favorite by composite key.
func (r *FavoritesRepository) Delete(userID, movieID string) error {
	_, err := r.db.Exec(`
		DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}
