package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/anon381/Movie-Search-App/internal/errs"
)

// User is the stored account record, including credential material that
// never leaves the repository/auth layers.
type User struct {
	ID        string
	Email     string
	PassHash  []byte
	PassSalt  []byte
	Confirmed bool
	CreatedAt time.Time
}

// UserRepository handles database operations for user accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email maps to ErrAlreadyExists
// so callers can classify the conflict distinctly.
func (r *UserRepository) Create(u *User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, pass_hash, pass_salt, confirmed)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.PassHash, u.PassSalt, u.Confirmed)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return errs.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail returns a user by email address.
func (r *UserRepository) GetByEmail(email string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT id, email, COALESCE(pass_hash, ''), COALESCE(pass_salt, ''), confirmed, created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PassHash, &u.PassSalt, &u.Confirmed, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(id string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT id, email, COALESCE(pass_hash, ''), COALESCE(pass_salt, ''), confirmed, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PassHash, &u.PassSalt, &u.Confirmed, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Confirm marks a user's email as confirmed.
func (r *UserRepository) Confirm(id string) error {
	_, err := r.db.Exec(`UPDATE users SET confirmed = TRUE WHERE id = $1`, id)
	return err
}

// UpdatePassword replaces the stored credential material.
func (r *UserRepository) UpdatePassword(id string, hash, salt []byte) error {
	_, err := r.db.Exec(`
		UPDATE users SET pass_hash = $1, pass_salt = $2 WHERE id = $3
	`, hash, salt, id)
	return err
}
