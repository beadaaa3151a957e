// Package storage is the embedded SQLite data layer: schema management, the
// balance ledger, reporting queries and the account/category directory.
// Balance consistency is kept by explicit transactional procedures rather
// than database triggers, so every mutation is a single atomic unit.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store owns the database handle. It is constructed once at startup and
// passed to the layers above it; there is no ambient global connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database file, applies connection pragmas and
// runs schema migrations. The connection pool is capped at one connection:
// the design assumes a single local writer.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// begin starts a write transaction. The returned rollback func is safe to
// defer: it is a no-op after commit.
func (s *Store) begin(ctx context.Context) (*sql.Tx, func(), error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, func() { _ = tx.Rollback() }, nil
}

// newID mints a prefixed opaque id, e.g. "tx_9f8a…".
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func nowSec() int64 {
	return time.Now().Unix()
}

// nullable maps "" to NULL for optional TEXT columns.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
