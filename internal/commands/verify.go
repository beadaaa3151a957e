package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/levanchungit/qlct/internal/storage"
)

func newVerifyCommand() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit cached account balances against the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			drifts, err := store.VerifyBalances(cmd.Context())
			if err != nil {
				return err
			}
			if len(drifts) == 0 {
				slog.Info("All account balances consistent")
				return nil
			}

			for _, d := range drifts {
				slog.Error("Balance drift",
					"account", d.AccountID, "name", d.Name,
					"cached", d.Cached, "computed", d.Computed)
			}
			if !repair {
				return fmt.Errorf("%d account(s) have drifting balances", len(drifts))
			}

			n, err := store.RepairBalances(cmd.Context())
			if err != nil {
				return err
			}
			slog.Info("Repaired balances", "accounts", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "rewrite drifting cached balances from the ledger")
	return cmd
}
