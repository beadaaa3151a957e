package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/levanchungit/qlct/internal/auth"
	"github.com/levanchungit/qlct/internal/storage"
)

func newSeedCommand() *cobra.Command {
	var sampleMonth string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a starter workspace for the logged-in user",
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

			sess, ok, err := auth.NewSessionStore(cfg.SessionFile).Load()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no active session, log in first")
			}

			if err := store.SeedIfEmpty(cmd.Context(), sess.UserID); err != nil {
				return err
			}

			if sampleMonth != "" {
				t, err := time.ParseInLocation("2006-01", sampleMonth, time.Local)
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", sampleMonth)
				}
				if err := store.SeedSampleMonth(cmd.Context(), sess.UserID, t.Year(), t.Month()); err != nil {
					return err
				}
			}

			slog.Info("Seeding complete", "user", sess.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sampleMonth, "sample-month", "", "also seed demo transactions for the given month (YYYY-MM)")
	return cmd
}
