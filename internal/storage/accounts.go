package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/levanchungit/qlct/internal/core"
)

// DefaultCurrency is used when an account is created without an explicit
// currency code. Currency is fixed per account; there is no conversion.
const DefaultCurrency = "VND"

// NewAccount carries the caller-supplied fields for account creation.
type NewAccount struct {
	Name           string
	Icon           core.Icon
	Color          string
	CurrencyCode   string
	IncludeInTotal bool
}

// AccountUpdate is a partial update: nil fields are left untouched.
type AccountUpdate struct {
	Name           *string
	Icon           *core.Icon
	Color          *string
	CurrencyCode   *string
	IncludeInTotal *bool
}

// CreateAccount validates the name, assigns a fresh id and persists the
// account with a zero cached balance.
func (s *Store) CreateAccount(ctx context.Context, userID string, in NewAccount) (string, error) {
	name, err := core.ValidateName(in.Name)
	if err != nil {
		return "", err
	}
	currency := in.CurrencyCode
	if currency == "" {
		currency = DefaultCurrency
	}

	id := newID("acc")
	now := nowSec()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts(id, user_id, name, icon, color, currency_code, include_in_total, balance_cached, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, userID, name, nullable(in.Icon.Pack()), nullable(in.Color), currency, boolInt(in.IncludeInTotal), now, now)
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", id, "name", name)
	return id, nil
}

// UpdateAccount applies the supplied fields only and always refreshes
// updated_at.
func (s *Store) UpdateAccount(ctx context.Context, userID, id string, upd AccountUpdate) error {
	set := []string{}
	args := []any{}

	if upd.Name != nil {
		name, err := core.ValidateName(*upd.Name)
		if err != nil {
			return err
		}
		set = append(set, "name = ?")
		args = append(args, name)
	}
	if upd.Icon != nil {
		set = append(set, "icon = ?")
		args = append(args, nullable(upd.Icon.Pack()))
	}
	if upd.Color != nil {
		set = append(set, "color = ?")
		args = append(args, nullable(*upd.Color))
	}
	if upd.CurrencyCode != nil {
		set = append(set, "currency_code = ?")
		args = append(args, *upd.CurrencyCode)
	}
	if upd.IncludeInTotal != nil {
		set = append(set, "include_in_total = ?")
		args = append(args, boolInt(*upd.IncludeInTotal))
	}

	set = append(set, "updated_at = ?")
	args = append(args, nowSec(), id, userID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET "+strings.Join(set, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteAccount removes an account and, by referential policy, every
// transaction posted against it. The earliest-created account of a user is
// the implicit default and is refused with ErrDefaultAccount; the sole
// remaining account is refused with ErrLastAccount.
func (s *Store) DeleteAccount(ctx context.Context, userID, id string) error {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE id = ? AND user_id = ?`, id, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if total == 1 {
		return core.ErrLastAccount
	}

	var defaultID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`, userID).Scan(&defaultID); err != nil {
		return fmt.Errorf("find default account: %w", err)
	}
	if defaultID == id {
		return core.ErrDefaultAccount
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete account: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}

// Account fetches a single account by id.
func (s *Store) Account(ctx context.Context, userID, id string) (core.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, icon, color, currency_code, include_in_total, balance_cached, created_at, updated_at
		 FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}

// ListAccounts returns the user's accounts ordered by name.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, icon, color, currency_code, include_in_total, balance_cached, created_at, updated_at
		 FROM accounts WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (core.Account, error) {
	var (
		a            core.Account
		icon, color  sql.NullString
		includeTotal int64
		updatedAt    sql.NullInt64
	)
	err := r.Scan(&a.ID, &a.UserID, &a.Name, &icon, &color, &a.CurrencyCode,
		&includeTotal, &a.BalanceCached, &a.CreatedAt, &updatedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Icon = core.ParseIcon(icon.String)
	a.Color = color.String
	a.IncludeInTotal = includeTotal != 0
	a.UpdatedAt = updatedAt.Int64
	return a, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
