package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/levanchungit/qlct/internal/auth"
	apphttp "github.com/levanchungit/qlct/internal/http"
	"github.com/levanchungit/qlct/internal/reconcile"
	"github.com/levanchungit/qlct/internal/services"
	"github.com/levanchungit/qlct/internal/storage"
)

func newServeCommand() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the balance reconciler",
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

			sessions := auth.NewSessionStore(cfg.SessionFile)
			authSvc := auth.NewService(store, cfg.BcryptCost)
			reports := services.NewReportService(store, cfg.CacheMaxSize, cfg.CacheTTL)
			ledger := services.NewLedgerService(store, reports)
			directory := services.NewDirectoryService(store, reports)

			if cfg.SeedDemo {
				if sess, ok, err := sessions.Load(); err == nil && ok {
					if err := store.SeedIfEmpty(cmd.Context(), sess.UserID); err != nil {
						slog.Warn("Demo seed failed", "error", err)
					}
				}
			}

			srv := apphttp.NewServer(":"+cfg.Port, authSvc, sessions, ledger, directory, reports)
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			runner := reconcile.NewRunner(store, cfg.ReconcileInterval, repair)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				slog.Info("Starting server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				return runner.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			slog.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "rewrite drifting cached balances from the ledger")
	return cmd
}
