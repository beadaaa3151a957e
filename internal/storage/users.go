package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/levanchungit/qlct/internal/core"
)

// CreateUser inserts a row for an already-hashed credential. Uniqueness of
// the username is enforced by the schema; the caller checks it first to
// return a typed error before hashing work.
func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(id, username, password_hash, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByUsername looks a user up by exact (already normalized) username.
func (s *Store) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// UsernameExists reports whether a username is already registered.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count username: %w", err)
	}
	return n > 0, nil
}

// TouchUser refreshes updated_at, e.g. after a successful login.
func (s *Store) TouchUser(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET updated_at = ? WHERE id = ?`, nowSec(), id)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}
