package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/levanchungit/qlct/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "qlct.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store) string {
	t.Helper()
	u := core.User{
		ID:           newID("u"),
		Username:     "demo-" + newID("n"),
		PasswordHash: "x",
		CreatedAt:    nowSec(),
		UpdatedAt:    nowSec(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u.ID
}

// seedAccount creates an account and pins its created_at so default-account
// ordering is deterministic in tests.
func seedAccount(t *testing.T, s *Store, userID, name string, createdAt int64) string {
	t.Helper()
	id, err := s.CreateAccount(context.Background(), userID, NewAccount{Name: name, IncludeInTotal: true})
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE accounts SET created_at = ? WHERE id = ?`, createdAt, id)
	require.NoError(t, err)
	return id
}

func balanceOf(t *testing.T, s *Store, userID, accountID string) int64 {
	t.Helper()
	a, err := s.Account(context.Background(), userID, accountID)
	require.NoError(t, err)
	return a.BalanceCached
}
