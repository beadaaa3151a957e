// Package auth handles local account registration and login. Credentials
// live in the same SQLite database as the ledger; passwords are stored as
// bcrypt hashes only.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

const (
	minUsernameLen = 3
	minPasswordLen = 4
)

// Service wraps the user table with credential policy: normalization,
// length checks, hashing and the collapsed login error.
type Service struct {
	store *storage.Store
	cost  int
}

func NewService(store *storage.Store, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: bcryptCost}
}

// Register creates a new user. Usernames are trimmed and lowercased before
// any check so "Alice" and "alice " are the same account.
func (a *Service) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < minUsernameLen {
		return core.User{}, core.ErrUsernameTooShort
	}
	if len(password) < minPasswordLen {
		return core.User{}, core.ErrPasswordTooShort
	}

	taken, err := a.store.UsernameExists(ctx, username)
	if err != nil {
		return core.User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return core.User{}, core.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().Unix()
	u := core.User{
		ID:           "u_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "Registered user", "user", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies a credential pair. Unknown username and wrong password
// both come back as ErrInvalidCredentials.
func (a *Service) Login(ctx context.Context, username, password string) (core.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	u, err := a.store.UserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return core.User{}, core.ErrInvalidCredentials
	}

	if err := a.store.TouchUser(ctx, u.ID); err != nil {
		return core.User{}, fmt.Errorf("touch user: %w", err)
	}
	return u, nil
}
