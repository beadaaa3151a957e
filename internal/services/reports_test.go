package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/period"
	"github.com/levanchungit/qlct/internal/storage"
)

type fixture struct {
	store     *storage.Store
	reports   *ReportService
	ledger    *LedgerService
	directory *DirectoryService
	user      string
	account   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	user := core.User{
		ID: "u_test", Username: "tester", PasswordHash: "x",
		CreatedAt: 1, UpdatedAt: 1,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	accID, err := s.CreateAccount(context.Background(), user.ID, storage.NewAccount{Name: "Cash"})
	require.NoError(t, err)

	reports := NewReportService(s, 64, time.Minute)
	return &fixture{
		store:     s,
		reports:   reports,
		ledger:    NewLedgerService(s, reports),
		directory: NewDirectoryService(s, reports),
		user:      user.ID,
		account:   accID,
	}
}

var march = period.Range{
	Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local),
	End:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local),
}

func (f *fixture) post(t *testing.T, typ core.TxType, amount int64, catID string) string {
	t.Helper()
	id, err := f.ledger.Post(context.Background(), core.Posting{
		UserID: f.user, AccountID: f.account, CategoryID: catID,
		Type: typ, Amount: amount, OccurredAt: march.StartSec() + 3600,
	})
	require.NoError(t, err)
	return id
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.post(t, core.Income, 1_000_000, "")
	f.post(t, core.Expense, 150_000, "")
	f.post(t, core.Expense, 50_000, "")

	s, err := f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	assert.Equal(t, Summary{Income: 1_000_000, Expense: 200_000, Net: 800_000}, s)
}

func TestSummaryCacheInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	txID := f.post(t, core.Expense, 150_000, "")

	s, err := f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	require.EqualValues(t, 150_000, s.Expense)

	// a new posting must show up immediately, not after the TTL
	f.post(t, core.Expense, 50_000, "")
	s, err = f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	assert.EqualValues(t, 200_000, s.Expense)

	require.NoError(t, f.ledger.Delete(ctx, f.user, txID))
	s, err = f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	assert.EqualValues(t, 50_000, s.Expense)
}

func TestBreakdownPercents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	groceries, err := f.directory.CreateCategory(ctx, f.user, storage.NewCategory{Name: "Groceries", Type: core.Expense})
	require.NoError(t, err)
	parties, err := f.directory.CreateCategory(ctx, f.user, storage.NewCategory{Name: "Parties", Type: core.Expense})
	require.NoError(t, err)

	f.post(t, core.Expense, 750_000, parties)
	f.post(t, core.Expense, 250_000, groceries)

	b, err := f.reports.Breakdown(ctx, f.user, march, core.Expense)
	require.NoError(t, err)
	require.Len(t, b, 2)
	assert.Equal(t, parties, b[0].CategoryID)
	assert.InDelta(t, 75.0, b[0].Percent, 0.001)
	assert.InDelta(t, 25.0, b[1].Percent, 0.001)
}

func TestBreakdownCacheInvalidatedByCategoryRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	catID, err := f.directory.CreateCategory(ctx, f.user, storage.NewCategory{Name: "Food", Type: core.Expense})
	require.NoError(t, err)
	f.post(t, core.Expense, 100_000, catID)

	b, err := f.reports.Breakdown(ctx, f.user, march, core.Expense)
	require.NoError(t, err)
	require.Equal(t, "Food", b[0].Name)

	name := "Groceries"
	require.NoError(t, f.directory.UpdateCategory(ctx, f.user, catID, storage.CategoryUpdate{Name: &name}))

	b, err = f.reports.Breakdown(ctx, f.user, march, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", b[0].Name)
}

func TestDeleteCategoryMovesSpendToUncategorized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	catID, err := f.directory.CreateCategory(ctx, f.user, storage.NewCategory{Name: "Food", Type: core.Expense})
	require.NoError(t, err)
	f.post(t, core.Expense, 100_000, catID)

	_, err = f.reports.Breakdown(ctx, f.user, march, core.Expense) // warm the cache
	require.NoError(t, err)

	require.NoError(t, f.directory.DeleteCategory(ctx, f.user, catID))

	b, err := f.reports.Breakdown(ctx, f.user, march, core.Expense)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Empty(t, b[0].CategoryID)
	assert.EqualValues(t, 100_000, b[0].Total)
}

func TestInvalidateScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.post(t, core.Expense, 100_000, "")

	other := core.User{ID: "u_other", Username: "other", PasswordHash: "x", CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, f.store.CreateUser(ctx, other))

	_, err := f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	_, err = f.reports.Summary(ctx, other.ID, march)
	require.NoError(t, err)

	f.reports.Invalidate(other.ID)

	// first user's entry is untouched
	s, err := f.reports.Summary(ctx, f.user, march)
	require.NoError(t, err)
	assert.EqualValues(t, 100_000, s.Expense)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	anchor := time.Date(2026, time.March, 18, 14, 30, 0, 0, time.Local)

	rng, err := f.reports.Resolve(period.Month, anchor, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local), rng.Start)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local), rng.End)

	customStart := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
	customEnd := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.Local)
	rng, err = f.reports.Resolve(period.Custom, anchor, customStart, customEnd)
	require.NoError(t, err)
	assert.Equal(t, customStart, rng.Start)
	assert.True(t, rng.End.After(customEnd), "custom end day is inclusive")

	_, err = f.reports.Resolve(period.Kind("decade"), anchor, time.Time{}, time.Time{})
	require.Error(t, err)
}

func TestListByCategoryAndTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	catID, err := f.directory.CreateCategory(ctx, f.user, storage.NewCategory{Name: "Food", Type: core.Expense})
	require.NoError(t, err)
	f.post(t, core.Expense, 100_000, catID)
	f.post(t, core.Expense, 50_000, "")

	inCat, err := f.ledger.ListByCategory(ctx, f.user, catID)
	require.NoError(t, err)
	assert.Len(t, inCat, 1)

	uncat, err := f.ledger.ListByCategory(ctx, f.user, "")
	require.NoError(t, err)
	assert.Len(t, uncat, 1)

	details, err := f.reports.Transactions(ctx, f.user, march)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Cash", details[0].AccountName)
}
