package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/household-sim/internal/api"
	"github.com/talgya/household-sim/internal/engine"
	"github.com/talgya/household-sim/internal/persistence"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated households over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := persistence.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := &api.Server{
				Store: db,
				Runner: &engine.Runner{
					Seed:    cfg.Seed,
					Years:   cfg.Years,
					Workers: 1,
				},
				Addr:           cfg.Listen,
				AllowedOrigins: cfg.CORSOrigins,
			}
			if cfg.SamplesPerMinute > 0 {
				srv.SampleLimiter = api.NewRateLimiter(cfg.SamplesPerMinute, time.Minute)
			}
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("db", "", "SQLite database written by generate")
	cmd.Flags().String("listen", "", "Address to listen on")
	return cmd
}
