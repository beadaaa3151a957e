package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/levanchungit/qlct/internal/core"
)

// The ledger invariant: at every observable point an account's
// balance_cached equals the sum of signed amounts of its transactions
// (income positive, expense negative). Every mutation below performs the
// row write and the balance adjustment inside one database transaction, so
// a reader can never observe one without the other and a failure rolls
// both back.

// PostTransaction inserts a posting and applies its signed delta to the
// owning account. Validation happens before any mutation: an invalid
// posting is rejected, not rolled back.
func (s *Store) PostTransaction(ctx context.Context, p core.Posting) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer rollback()

	if err := checkCategory(ctx, tx, p.UserID, p.CategoryID); err != nil {
		return "", err
	}
	if err := applyDelta(ctx, tx, p.UserID, p.AccountID, p.Type.Signed(p.Amount)); err != nil {
		return "", err
	}

	id := newID("tx")
	now := nowSec()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, account_id, category_id, type, amount, note, occurred_at, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.UserID, p.AccountID, nullable(p.CategoryID), string(p.Type), p.Amount, nullable(p.Note), p.OccurredAt, now, now)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit posting: %w", err)
	}

	slog.InfoContext(ctx, "Transaction posted",
		"id", id, "account", p.AccountID, "type", p.Type, "amount", p.Amount)
	return id, nil
}

// DeleteTransaction removes a posting and applies the inverse delta to the
// owning account.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	old, err := lockTransaction(ctx, tx, userID, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := applyDelta(ctx, tx, userID, old.AccountID, -old.Type.Signed(old.Amount)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "account", old.AccountID)
	return nil
}

// UpdateTransaction replaces a posting with new values, equivalent to
// delete-then-post with respect to balances: the old account loses the old
// delta and the new account (which may differ) gains the new one, in one
// atomic unit.
func (s *Store) UpdateTransaction(ctx context.Context, userID, id string, p core.Posting) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	old, err := lockTransaction(ctx, tx, userID, id)
	if err != nil {
		return err
	}
	if err := checkCategory(ctx, tx, userID, p.CategoryID); err != nil {
		return err
	}

	if err := applyDelta(ctx, tx, userID, old.AccountID, -old.Type.Signed(old.Amount)); err != nil {
		return err
	}
	if err := applyDelta(ctx, tx, userID, p.AccountID, p.Type.Signed(p.Amount)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions
		 SET account_id = ?, category_id = ?, type = ?, amount = ?, note = ?, occurred_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.AccountID, nullable(p.CategoryID), string(p.Type), p.Amount, nullable(p.Note), p.OccurredAt, nowSec(), id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		"id", id, "from_account", old.AccountID, "to_account", p.AccountID)
	return nil
}

// Transaction fetches a single posting by id.
func (s *Store) Transaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, category_id, type, amount, note, occurred_at, created_at, updated_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query transaction: %w", err)
	}
	return t, nil
}

// ListTransactionsByCategory returns a category's postings, newest first.
// An empty categoryID selects uncategorized postings.
func (s *Store) ListTransactionsByCategory(ctx context.Context, userID, categoryID string) ([]core.Transaction, error) {
	query := `SELECT id, user_id, account_id, category_id, type, amount, note, occurred_at, created_at, updated_at
	          FROM transactions WHERE user_id = ? AND `
	args := []any{userID}
	if categoryID == "" {
		query += `category_id IS NULL`
	} else {
		query += `category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY occurred_at DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions by category: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransactionDetail joins a posting with display names for list screens.
type TransactionDetail struct {
	core.Transaction
	AccountName  string
	CategoryName string
	CategoryIcon core.Icon
}

// ListTransactionsInRange returns postings with occurred_at in [startSec,
// endSec), newest first, joined with account and category metadata.
func (s *Store) ListTransactionsInRange(ctx context.Context, userID string, startSec, endSec int64) ([]TransactionDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.account_id, t.category_id, t.type, t.amount, t.note,
		        t.occurred_at, t.created_at, t.updated_at,
		        a.name, c.name, c.icon
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.occurred_at >= ? AND t.occurred_at < ?
		 ORDER BY t.occurred_at DESC, t.created_at DESC`,
		userID, startSec, endSec)
	if err != nil {
		return nil, fmt.Errorf("query transactions in range: %w", err)
	}
	defer rows.Close()

	var out []TransactionDetail
	for rows.Next() {
		var (
			d                      TransactionDetail
			categoryID, note       sql.NullString
			updatedAt              sql.NullInt64
			typ                    string
			catName, catIcon       sql.NullString
		)
		err := rows.Scan(&d.ID, &d.UserID, &d.AccountID, &categoryID, &typ, &d.Amount, &note,
			&d.OccurredAt, &d.CreatedAt, &updatedAt, &d.AccountName, &catName, &catIcon)
		if err != nil {
			return nil, fmt.Errorf("scan transaction detail: %w", err)
		}
		d.CategoryID = categoryID.String
		d.Type = core.TxType(typ)
		d.Note = note.String
		d.UpdatedAt = updatedAt.Int64
		d.CategoryName = catName.String
		d.CategoryIcon = core.ParseIcon(catIcon.String)
		out = append(out, d)
	}
	return out, rows.Err()
}

// applyDelta shifts an account's cached balance and refreshes its
// updated_at. Zero affected rows means the account does not exist for this
// user, which aborts the enclosing transaction.
func applyDelta(ctx context.Context, tx *sql.Tx, userID, accountID string, delta int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cached = balance_cached + ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		delta, nowSec(), accountID, userID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", accountID, core.ErrNotFound)
	}
	return nil
}

// checkCategory verifies an optional category reference before posting.
func checkCategory(ctx context.Context, tx *sql.Tx, userID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM categories WHERE id = ? AND user_id = ?`, categoryID, userID).Scan(&n)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", categoryID, core.ErrNotFound)
	}
	return nil
}

// lockTransaction reads a posting inside a write transaction.
func lockTransaction(ctx context.Context, tx *sql.Tx, userID, id string) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, category_id, type, amount, note, occurred_at, created_at, updated_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction: %w", err)
	}
	return t, nil
}

func scanTransaction(r rowScanner) (core.Transaction, error) {
	var (
		t                core.Transaction
		categoryID, note sql.NullString
		typ              string
		updatedAt        sql.NullInt64
	)
	err := r.Scan(&t.ID, &t.UserID, &t.AccountID, &categoryID, &typ, &t.Amount, &note,
		&t.OccurredAt, &t.CreatedAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = categoryID.String
	t.Type = core.TxType(typ)
	t.Note = note.String
	t.UpdatedAt = updatedAt.Int64
	return t, nil
}
