package services

import (
	"context"
	"fmt"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

// LedgerService fronts the transactional ledger. Every mutation purges the
// user's cached reports after the storage transaction commits.
type LedgerService struct {
	store   *storage.Store
	reports *ReportService
}

func NewLedgerService(store *storage.Store, reports *ReportService) *LedgerService {
	return &LedgerService{store: store, reports: reports}
}

func (l *LedgerService) Post(ctx context.Context, p core.Posting) (string, error) {
	id, err := l.store.PostTransaction(ctx, p)
	if err != nil {
		return "", err
	}
	l.reports.Invalidate(p.UserID)
	return id, nil
}

func (l *LedgerService) Update(ctx context.Context, userID, id string, p core.Posting) error {
	if err := l.store.UpdateTransaction(ctx, userID, id, p); err != nil {
		return err
	}
	l.reports.Invalidate(userID)
	return nil
}

func (l *LedgerService) Delete(ctx context.Context, userID, id string) error {
	if err := l.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	l.reports.Invalidate(userID)
	return nil
}

func (l *LedgerService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return l.store.Transaction(ctx, userID, id)
}

// ListByCategory lists a category's postings, newest first. An empty
// categoryID selects the uncategorized ones.
func (l *LedgerService) ListByCategory(ctx context.Context, userID, categoryID string) ([]core.Transaction, error) {
	txs, err := l.store.ListTransactionsByCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list by category: %w", err)
	}
	return txs, nil
}
