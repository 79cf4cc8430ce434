package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anon381/Movie-Search-App/internal/errs"
)

// One-time token kinds.
const (
	TokenMagicLink = "magic_link"
	TokenConfirm   = "confirm"
	TokenReset     = "reset"
)

// TokenRepository handles one-time auth tokens (magic links, email
// confirmations, password resets).
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a token for a user.
func (r *TokenRepository) Create(token, userID, kind string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO auth_tokens (token, user_id, kind, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, userID, kind, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// Consume marks a token used and returns the owning user. Unknown,
// expired, already-consumed or wrong-kind tokens map to ErrTokenInvalid.
func (r *TokenRepository) Consume(token, kind string) (string, error) {
	var userID string
	err := r.db.QueryRow(`
		UPDATE auth_tokens SET consumed_at = NOW()
		WHERE token = $1 AND kind = $2 AND consumed_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, token, kind).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", errs.ErrTokenInvalid
		}
		return "", fmt.Errorf("failed to consume token: %w", err)
	}
	return userID, nil
}
