// Package services sits between the HTTP surface and the storage layer.
// It resolves calendar periods, caches report queries per user and purges
// those caches on every write so reads never see stale totals.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/levanchungit/qlct/internal/cache"
	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/period"
	"github.com/levanchungit/qlct/internal/storage"
)

// Summary is the headline report for one period: totals per direction and
// their difference.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// BreakdownEntry is one category bucket with its share of the period total.
type BreakdownEntry struct {
	core.CategoryTotal
	Percent float64 `json:"percent"`
}

// ReportService answers aggregation queries over resolved time ranges.
type ReportService struct {
	store      *storage.Store
	summaries  *cache.TTLCache[Summary]
	breakdowns *cache.TTLCache[[]BreakdownEntry]
}

func NewReportService(store *storage.Store, maxSize int, ttl time.Duration) *ReportService {
	return &ReportService{
		store:      store,
		summaries:  cache.New[Summary](maxSize, ttl),
		breakdowns: cache.New[[]BreakdownEntry](maxSize, ttl),
	}
}

// Resolve turns period parameters into a concrete half-open range. A custom
// period takes explicit bounds; the calendar kinds derive them from anchor.
func (r *ReportService) Resolve(kind period.Kind, anchor time.Time, customStart, customEnd time.Time) (period.Range, error) {
	if !kind.Valid() {
		return period.Range{}, fmt.Errorf("unknown period kind %q", kind)
	}
	if kind == period.Custom {
		return period.Between(customStart, customEnd), nil
	}
	return period.For(kind, anchor), nil
}

// Summary returns income, expense and net for the range, cached per user.
func (r *ReportService) Summary(ctx context.Context, userID string, rng period.Range) (Summary, error) {
	key := fmt.Sprintf("%s:summary:%d:%d", userID, rng.StartSec(), rng.EndSec())
	if s, ok := r.summaries.Get(key); ok {
		return s, nil
	}

	income, err := r.store.TotalInRange(ctx, userID, rng.StartSec(), rng.EndSec(), core.Income)
	if err != nil {
		return Summary{}, fmt.Errorf("income total: %w", err)
	}
	expense, err := r.store.TotalInRange(ctx, userID, rng.StartSec(), rng.EndSec(), core.Expense)
	if err != nil {
		return Summary{}, fmt.Errorf("expense total: %w", err)
	}

	s := Summary{Income: income, Expense: expense, Net: income - expense}
	r.summaries.Set(key, s)
	return s, nil
}

// Breakdown returns per-category buckets for the range, largest first, with
// display percentages attached.
func (r *ReportService) Breakdown(ctx context.Context, userID string, rng period.Range, typ core.TxType) ([]BreakdownEntry, error) {
	key := fmt.Sprintf("%s:breakdown:%s:%d:%d", userID, typ, rng.StartSec(), rng.EndSec())
	if b, ok := r.breakdowns.Get(key); ok {
		return b, nil
	}

	totals, err := r.store.CategoryBreakdown(ctx, userID, rng.StartSec(), rng.EndSec(), typ)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	percents := core.BreakdownPercent(totals)
	out := make([]BreakdownEntry, len(totals))
	for i, t := range totals {
		out[i] = BreakdownEntry{CategoryTotal: t, Percent: percents[i]}
	}
	r.breakdowns.Set(key, out)
	return out, nil
}

// Transactions lists the range's postings with account and category names
// joined in. Listings are not cached; they page through the range directly.
func (r *ReportService) Transactions(ctx context.Context, userID string, rng period.Range) ([]storage.TransactionDetail, error) {
	return r.store.ListTransactionsInRange(ctx, userID, rng.StartSec(), rng.EndSec())
}

// Invalidate drops every cached report for the user. Called by the write
// paths after any mutation that can change a total.
func (r *ReportService) Invalidate(userID string) {
	prefix := userID + ":"
	r.summaries.Purge(prefix)
	r.breakdowns.Purge(prefix)
}

// CleanExpired trims expired entries from both caches.
func (r *ReportService) CleanExpired() int {
	return r.summaries.CleanExpired() + r.breakdowns.CleanExpired()
}
