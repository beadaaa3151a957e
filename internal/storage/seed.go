package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levanchungit/qlct/internal/core"
)

// SeedIfEmpty provisions a starter workspace for a user who has no
// accounts yet: two accounts, a handful of categories and one sample
// posting. Everything money-related goes through the ledger so the balance
// invariant holds from the first row.
func (s *Store) SeedIfEmpty(ctx context.Context, userID string) error {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("check existing accounts: %w", err)
	}
	if len(accounts) > 0 {
		return nil
	}

	walletID, err := s.CreateAccount(ctx, userID, NewAccount{
		Name:           "Wallet",
		Icon:           core.Icon{Library: core.IconMaterial, Name: "wallet"},
		Color:          "red",
		IncludeInTotal: true,
	})
	if err != nil {
		return fmt.Errorf("seed wallet account: %w", err)
	}
	bankID, err := s.CreateAccount(ctx, userID, NewAccount{
		Name:           "Bank",
		Icon:           core.Icon{Library: core.IconMaterial, Name: "bank"},
		Color:          "green",
		IncludeInTotal: true,
	})
	if err != nil {
		return fmt.Errorf("seed bank account: %w", err)
	}

	type seedCat struct {
		name  string
		typ   core.TxType
		icon  string
		color string
	}
	cats := []seedCat{
		{"4G", core.Expense, "mi:sim-card", "#2ca9ff"},
		{"Electricity", core.Expense, "mi:flash-on", "#66C2A3"},
		{"Groceries", core.Expense, "mc:basket-outline", "#7EC5E8"},
		{"Parties", core.Expense, "mi:celebration", "#EE4DB4"},
		{"Salary", core.Income, "mi:payments", "#2563eb"},
		{"Other", core.Expense, "mc:help-circle-outline", "#E84A3C"},
	}
	catIDs := make(map[string]string, len(cats))
	for _, c := range cats {
		id, err := s.CreateCategory(ctx, userID, NewCategory{
			Name:  c.name,
			Type:  c.typ,
			Icon:  core.ParseIcon(c.icon),
			Color: c.color,
		})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
		catIDs[c.name] = id
	}

	if _, err := s.PostTransaction(ctx, core.Posting{
		UserID:     userID,
		AccountID:  bankID,
		CategoryID: catIDs["4G"],
		Type:       core.Expense,
		Amount:     150_000,
		Note:       "Viettel 5G plan",
		OccurredAt: nowSec(),
	}); err != nil {
		return fmt.Errorf("seed sample posting: %w", err)
	}

	slog.InfoContext(ctx, "Seeded starter workspace",
		"user", userID, "wallet", walletID, "bank", bankID)
	return nil
}

// SeedSampleMonth posts a fixed batch of demo transactions for the given
// calendar month. A settings flag keeps the seed idempotent across
// restarts.
func (s *Store) SeedSampleMonth(ctx context.Context, userID string, year int, month time.Month) error {
	flag := fmt.Sprintf("seed_%04d_%02d", year, int(month))
	if v, ok, err := s.Setting(ctx, flag); err != nil {
		return err
	} else if ok && v == "done" {
		return nil
	}

	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("sample month needs a seeded workspace: %w", core.ErrNotFound)
	}
	accountID := accounts[0].ID

	cats, err := s.ListCategories(ctx, userID, CategoryFilter{})
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	catByName := make(map[string]string, len(cats))
	for _, c := range cats {
		catByName[c.Name] = c.ID
	}

	type entry struct {
		day      int
		category string
		typ      core.TxType
		amount   int64
		note     string
	}
	entries := []entry{
		{1, "Salary", core.Income, 15_000_000, "Monthly salary"},
		{15, "Salary", core.Income, 500_000, "Bonus"},
		{2, "4G", core.Expense, 150_000, "Viettel data plan"},
		{5, "Electricity", core.Expense, 320_000, "Electric bill"},
		{6, "Groceries", core.Expense, 450_000, "Supermarket"},
		{7, "Parties", core.Expense, 1_000_000, "Friend's wedding"},
		{10, "Groceries", core.Expense, 180_000, "Snacks"},
		{12, "4G", core.Expense, 120_000, "Data top-up"},
		{18, "Parties", core.Expense, 600_000, "Company dinner"},
		{20, "Electricity", core.Expense, 310_000, "Electric bill"},
		{25, "Groceries", core.Expense, 700_000, "Weekly market"},
	}

	for _, e := range entries {
		occurred := time.Date(year, month, e.day, 0, 0, 0, 0, time.Local).Unix()
		if _, err := s.PostTransaction(ctx, core.Posting{
			UserID:     userID,
			AccountID:  accountID,
			CategoryID: catByName[e.category],
			Type:       e.typ,
			Amount:     e.amount,
			Note:       e.note,
			OccurredAt: occurred,
		}); err != nil {
			return fmt.Errorf("seed posting %q: %w", e.note, err)
		}
	}

	if err := s.SetSetting(ctx, flag, "done"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Seeded sample month",
		"user", userID, "year", year, "month", int(month), "postings", len(entries))
	return nil
}
