package repository

import (
	"database/sql"
	"fmt"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// HistoryRepository handles database operations for search history.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByUser returns the most recent entries, newest first.
func (r *HistoryRepository) ListByUser(userID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = models.HistoryLimit
	}
	rows, err := r.db.Query(`
		SELECT id, query, COALESCE(year_filter, ''), COALESCE(type_filter, ''),
			COALESCE(result_count, 0), executed_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.YearFilter, &e.TypeFilter, &e.ResultCount, &e.ExecutedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert appends a history row and returns its id.
func (r *HistoryRepository) Insert(userID string, e models.HistoryEntry) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO search_history (user_id, query, year_filter, type_filter, result_count, executed_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING id
	`, userID, e.Query, e.YearFilter, e.TypeFilter, e.ResultCount, e.ExecutedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history: %w", err)
	}
	return id, nil
}
