// Package reconcile periodically audits the cached account balances
// against the ledger. The explicit transactional write paths should keep
// them equal; this is the safety net that notices if they ever are not.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levanchungit/qlct/internal/storage"
)

type Runner struct {
	store    *storage.Store
	interval time.Duration
	repair   bool
}

// NewRunner builds a reconciler. With repair set, drifting balances are
// rewritten from the ledger instead of only being reported.
func NewRunner(store *storage.Store, interval time.Duration, repair bool) *Runner {
	return &Runner{store: store, interval: interval, repair: repair}
}

// Run checks once immediately, then on every tick until ctx is cancelled.
// Cancellation is a normal shutdown, not an error.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Check(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Check(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Check runs a single audit pass.
func (r *Runner) Check(ctx context.Context) error {
	drifts, err := r.store.VerifyBalances(ctx)
	if err != nil {
		return fmt.Errorf("balance audit: %w", err)
	}
	if len(drifts) == 0 {
		slog.DebugContext(ctx, "Balance audit clean")
		return nil
	}

	for _, d := range drifts {
		slog.ErrorContext(ctx, "Balance drift detected",
			"account", d.AccountID, "name", d.Name,
			"cached", d.Cached, "computed", d.Computed)
	}

	if !r.repair {
		return nil
	}
	n, err := r.store.RepairBalances(ctx)
	if err != nil {
		return fmt.Errorf("repair balances: %w", err)
	}
	slog.WarnContext(ctx, "Repaired drifting balances", "accounts", n)
	return nil
}
