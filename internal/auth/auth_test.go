package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, bcrypt.MinCost)
}

func TestRegisterNormalizesUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "  Alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, len(u.ID) > 2 && u.ID[:2] == "u_")
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NotZero(t, u.CreatedAt)
}

func TestRegisterRejectsShortCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "ab", "secret")
	require.ErrorIs(t, err, core.ErrUsernameTooShort)

	_, err = svc.Register(ctx, "alice", "abc")
	require.ErrorIs(t, err, core.ErrPasswordTooShort)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	// case and whitespace variants collide with the normalized name
	_, err = svc.Register(ctx, "ALICE", "other")
	require.ErrorIs(t, err, core.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	reg, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "Alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
}

func TestLoginCollapsesFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "alice", "nope")
	_, noUser := svc.Login(ctx, "bob", "secret")
	require.ErrorIs(t, wrongPass, core.ErrInvalidCredentials)
	require.ErrorIs(t, noUser, core.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error(), "failure mode is not distinguishable")
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "state", "session.json"))

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "no session before login")

	require.NoError(t, store.Save(Session{UserID: "u_1", Username: "alice"}))

	sess, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u_1", sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.NotZero(t, sess.CreatedAt)

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}
