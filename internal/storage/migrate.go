package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is recorded in the settings table after every successful
// EnsureSchema run.
const SchemaVersion = "1"

// EnsureSchema brings the database to the current schema. It is idempotent
// and safe to call on every process start:
//
//  1. versioned baseline migrations create all tables and indexes,
//  2. an additive pass introspects tables a pre-migration deployment may
//     have created and adds any column that is missing, backfilling rows
//     so no required field is left NULL.
//
// Schema evolution is additive only; nothing is dropped or retyped. Any SQL
// error aborts startup, there is no partial-migration recovery.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := runMigrations(s.path); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	for _, c := range addedColumns {
		if err := s.ensureColumn(ctx, c.table, c.column, c.ddl, c.backfill); err != nil {
			return fmt.Errorf("ensure %s.%s: %w", c.table, c.column, err)
		}
	}

	if err := s.SetSetting(ctx, "schema_version", SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// addedColumns lists every column added after the first deployed schema,
// with a backfill so already-present rows keep a usable value.
var addedColumns = []struct {
	table    string
	column   string
	ddl      string
	backfill string
}{
	{"categories", "type", "TEXT",
		`UPDATE categories SET type = COALESCE(type, 'expense')`},
	{"categories", "parent_id", "TEXT", ""},
	{"categories", "created_at", "INTEGER",
		`UPDATE categories SET created_at = COALESCE(created_at, strftime('%s','now'))`},
	{"categories", "updated_at", "INTEGER",
		`UPDATE categories SET updated_at = COALESCE(updated_at, created_at, strftime('%s','now'))`},
	{"accounts", "updated_at", "INTEGER",
		`UPDATE accounts SET updated_at = COALESCE(updated_at, created_at, strftime('%s','now'))`},
	{"transactions", "updated_at", "INTEGER",
		`UPDATE transactions SET updated_at = COALESCE(updated_at, created_at, strftime('%s','now'))`},
	{"users", "created_at", "INTEGER",
		`UPDATE users SET created_at = COALESCE(created_at, strftime('%s','now'))`},
	{"users", "updated_at", "INTEGER",
		`UPDATE users SET updated_at = COALESCE(updated_at, created_at, strftime('%s','now'))`},
}

// ensureColumn adds a column when PRAGMA table_info shows it missing, then
// runs the backfill.
func (s *Store) ensureColumn(ctx context.Context, table, column, ddl, backfill string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table_info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("table_info rows: %w", err)
	}
	if found {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl)); err != nil {
		return fmt.Errorf("add column: %w", err)
	}
	if backfill != "" {
		if _, err := s.db.ExecContext(ctx, backfill); err != nil {
			return fmt.Errorf("backfill: %w", err)
		}
	}
	return nil
}

// runMigrations applies the embedded baseline migrations over a separate
// connection so the main pool is not disturbed.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
