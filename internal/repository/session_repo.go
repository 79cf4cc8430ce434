package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anon381/Movie-Search-App/internal/errs"
)

// StoredSession is a persisted refresh-token record. Sessions survive
// restarts; the access JWT is derived from them and never stored.
type StoredSession struct {
	ID           string
	UserID       string
	RefreshToken string
	ExpiresAt    time.Time
}

// SessionRepository handles database operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session row.
func (r *SessionRepository) Create(s *StoredSession) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.UserID, s.RefreshToken, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByRefreshToken returns a live session by its refresh token. Expired
// or unknown tokens map to ErrSessionExpired.
func (r *SessionRepository) GetByRefreshToken(token string) (*StoredSession, error) {
	var s StoredSession
	err := r.db.QueryRow(`
		SELECT id, user_id, refresh_token, expires_at
		FROM sessions WHERE refresh_token = $1 AND expires_at > NOW()
	`, token).Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrSessionExpired
		}
		return nil, err
	}
	return &s, nil
}

// Rotate replaces the refresh token of an existing session.
func (r *SessionRepository) Rotate(id, newToken string, expiresAt time.Time) error {
	res, err := r.db.Exec(`
		UPDATE sessions SET refresh_token = $1, expires_at = $2 WHERE id = $3
	`, newToken, expiresAt, id)
	if err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrSessionExpired
	}
	return nil
}

// Delete removes a session (sign-out).
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	return err
}
