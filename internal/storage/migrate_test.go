package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levanchungit/qlct/internal/core"
)

func TestEnsureSchemaFreshDatabase(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	version, ok, err := s.Setting(ctx, "schema_version")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SchemaVersion, version)

	for _, table := range []string{"settings", "users", "accounts", "categories", "transactions"} {
		var name string
		err := s.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := seedUser(t, s)
	seedAccount(t, s, user, "Cash", day1)

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	accounts, err := s.ListAccounts(ctx, user)
	require.NoError(t, err)
	assert.Len(t, accounts, 1, "existing data survives a re-run")
}

// A database from before categories carried type/parent/timestamps must be
// upgraded in place, with existing rows backfilled.
func TestEnsureSchemaUpgradesLegacyCategories(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE categories (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		name TEXT NOT NULL,
		icon TEXT,
		color TEXT
	)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO categories(id, name) VALUES('cat_legacy', 'Food')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var (
		typ       string
		createdAt int64
		updatedAt sql.NullInt64
		parentID  sql.NullString
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT type, parent_id, created_at, updated_at FROM categories WHERE id = 'cat_legacy'`).
		Scan(&typ, &parentID, &createdAt, &updatedAt)
	require.NoError(t, err)
	assert.Equal(t, "expense", typ, "legacy rows default to expense")
	assert.False(t, parentID.Valid)
	assert.NotZero(t, createdAt)
	assert.True(t, updatedAt.Valid)
	assert.Equal(t, createdAt, updatedAt.Int64)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := seedUser(t, s)

	require.NoError(t, s.SeedIfEmpty(ctx, user))

	accounts, err := s.ListAccounts(ctx, user)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	cats, err := s.ListCategories(ctx, user, CategoryFilter{})
	require.NoError(t, err)
	assert.Len(t, cats, 6)

	// second call is a no-op
	require.NoError(t, s.SeedIfEmpty(ctx, user))
	accounts, err = s.ListAccounts(ctx, user)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	// the sample posting went through the ledger
	var cached, summed int64
	for _, a := range accounts {
		cached += a.BalanceCached
	}
	err = s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(CASE type WHEN 'income' THEN amount ELSE -amount END), 0)
		FROM transactions WHERE user_id = ?`, user).Scan(&summed)
	require.NoError(t, err)
	assert.Equal(t, summed, cached)
}

func TestSeedSampleMonthIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := seedUser(t, s)
	require.NoError(t, s.SeedIfEmpty(ctx, user))

	require.NoError(t, s.SeedSampleMonth(ctx, user, 2026, time.March))

	countTx := func() int {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, user).Scan(&n)
		require.NoError(t, err)
		return n
	}
	first := countTx()
	require.Greater(t, first, 1)

	require.NoError(t, s.SeedSampleMonth(ctx, user, 2026, time.March))
	assert.Equal(t, first, countTx(), "settings flag blocks a re-seed")

	v, ok, err := s.Setting(ctx, "seed_2026_03")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "done", v)
}

func TestSeedSampleMonthNeedsWorkspace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user := seedUser(t, s)

	err := s.SeedSampleMonth(ctx, user, 2026, time.March)
	require.ErrorIs(t, err, core.ErrNotFound)
}
