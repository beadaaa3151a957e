package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/levanchungit/qlct/internal/core"
)

// TotalInRange sums the amounts of the user's postings of the given type
// with occurred_at in the half-open range [startSec, endSec). An empty
// range yields 0, not an error.
func (s *Store) TotalInRange(ctx context.Context, userID string, startSec, endSec int64, typ core.TxType) (int64, error) {
	var sum int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE user_id = ? AND type = ? AND occurred_at >= ? AND occurred_at < ?`,
		userID, string(typ), startSec, endSec).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("total in range: %w", err)
	}
	return sum, nil
}

// CategoryBreakdown sums matching postings per category, ordered by
// descending total. Postings without a category land in a synthetic
// uncategorized bucket (empty CategoryID); categories with no matching
// postings are omitted entirely.
func (s *Store) CategoryBreakdown(ctx context.Context, userID string, startSec, endSec int64, typ core.TxType) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.color, c.icon, SUM(t.amount) AS total
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.type = ? AND t.occurred_at >= ? AND t.occurred_at < ?
		 GROUP BY c.id
		 HAVING total IS NOT NULL
		 ORDER BY total DESC`,
		userID, string(typ), startSec, endSec)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var (
			id, name, color, icon sql.NullString
			total                 int64
		)
		if err := rows.Scan(&id, &name, &color, &icon, &total); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		out = append(out, core.CategoryTotal{
			CategoryID: id.String,
			Name:       name.String,
			Color:      color.String,
			Icon:       core.ParseIcon(icon.String),
			Total:      total,
		})
	}
	return out, rows.Err()
}
