package storage

import (
	"context"
	"fmt"
)

// Drift is one account whose cached balance disagrees with the sum of its
// ledger rows.
type Drift struct {
	AccountID string
	Name      string
	Cached    int64
	Computed  int64
}

// VerifyBalances recomputes every account's balance from its transactions
// and reports the accounts where the cached value differs. An empty result
// means the ledger invariant holds.
func (s *Store) VerifyBalances(ctx context.Context) ([]Drift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.balance_cached,
		        COALESCE(SUM(CASE t.type WHEN 'income' THEN t.amount ELSE -t.amount END), 0) AS computed
		 FROM accounts a
		 LEFT JOIN transactions t ON t.account_id = a.id
		 GROUP BY a.id
		 HAVING a.balance_cached != computed`)
	if err != nil {
		return nil, fmt.Errorf("verify balances: %w", err)
	}
	defer rows.Close()

	var drifts []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.AccountID, &d.Name, &d.Cached, &d.Computed); err != nil {
			return nil, fmt.Errorf("scan drift row: %w", err)
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

// RepairBalances overwrites each drifting account's cached balance with the
// recomputed sum. It returns the number of repaired accounts.
func (s *Store) RepairBalances(ctx context.Context) (int, error) {
	drifts, err := s.VerifyBalances(ctx)
	if err != nil {
		return 0, err
	}
	if len(drifts) == 0 {
		return 0, nil
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer rollback()

	for _, d := range drifts {
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance_cached = ?, updated_at = ? WHERE id = ?`,
			d.Computed, nowSec(), d.AccountID); err != nil {
			return 0, fmt.Errorf("repair account %s: %w", d.AccountID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit repair: %w", err)
	}
	return len(drifts), nil
}
