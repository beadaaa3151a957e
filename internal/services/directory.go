package services

import (
	"context"

	"github.com/levanchungit/qlct/internal/core"
	"github.com/levanchungit/qlct/internal/storage"
)

// DirectoryService fronts account and category management. Deletes can
// remove or unlink transactions, so those paths purge cached reports too.
type DirectoryService struct {
	store   *storage.Store
	reports *ReportService
}

func NewDirectoryService(store *storage.Store, reports *ReportService) *DirectoryService {
	return &DirectoryService{store: store, reports: reports}
}

func (d *DirectoryService) CreateAccount(ctx context.Context, userID string, in storage.NewAccount) (string, error) {
	return d.store.CreateAccount(ctx, userID, in)
}

func (d *DirectoryService) UpdateAccount(ctx context.Context, userID, id string, upd storage.AccountUpdate) error {
	return d.store.UpdateAccount(ctx, userID, id, upd)
}

// DeleteAccount removes an account and, by cascade, its transactions. The
// storage layer enforces the default-account and last-account policies.
func (d *DirectoryService) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := d.store.DeleteAccount(ctx, userID, id); err != nil {
		return err
	}
	d.reports.Invalidate(userID)
	return nil
}

func (d *DirectoryService) Account(ctx context.Context, userID, id string) (core.Account, error) {
	return d.store.Account(ctx, userID, id)
}

func (d *DirectoryService) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return d.store.ListAccounts(ctx, userID)
}

func (d *DirectoryService) CreateCategory(ctx context.Context, userID string, in storage.NewCategory) (string, error) {
	return d.store.CreateCategory(ctx, userID, in)
}

// UpdateCategory edits name, icon, color or parent. Names and colors show
// up in cached breakdowns, so the purge applies here as well.
func (d *DirectoryService) UpdateCategory(ctx context.Context, userID, id string, upd storage.CategoryUpdate) error {
	if err := d.store.UpdateCategory(ctx, userID, id, upd); err != nil {
		return err
	}
	d.reports.Invalidate(userID)
	return nil
}

// DeleteCategory unlinks the category from its transactions; they survive
// as uncategorized.
func (d *DirectoryService) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := d.store.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	d.reports.Invalidate(userID)
	return nil
}

func (d *DirectoryService) Category(ctx context.Context, userID, id string) (core.Category, error) {
	return d.store.Category(ctx, userID, id)
}

func (d *DirectoryService) ListCategories(ctx context.Context, userID string, f storage.CategoryFilter) ([]core.Category, error) {
	return d.store.ListCategories(ctx, userID, f)
}
