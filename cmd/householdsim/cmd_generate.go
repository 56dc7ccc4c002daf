package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/household-sim/internal/engine"
	"github.com/talgya/household-sim/internal/persistence"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Simulate a batch of households and write them to SQLite",
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
			slog.Info("database opened", "path", cfg.Database)

			runner := &engine.Runner{
				Seed:        cfg.Seed,
				Households:  cfg.Households,
				Years:       cfg.Years,
				Workers:     cfg.Workers,
				ReportEvery: max(cfg.Households/10, 1),
			}
			stats, err := runner.Run(ctx, db)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			if err := saveRunMeta(ctx, db, cfg.Seed, cfg.Years); err != nil {
				return fmt.Errorf("save run metadata: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d households (%d in force, %d lapsed, %d claims) to %s\n",
				stats.Households, stats.Inforce, stats.Lapsed, stats.Claims, cfg.Database)
			return nil
		},
	}

	cmd.Flags().Int("households", 0, "Number of households to simulate")
	cmd.Flags().Int("workers", 0, "Households simulated concurrently")
	cmd.Flags().String("db", "", "SQLite output path")
	return cmd
}

func saveRunMeta(ctx context.Context, db *persistence.DB, seed int64, years int) error {
	if err := db.SaveMeta(ctx, "seed", strconv.FormatInt(seed, 10)); err != nil {
		return err
	}
	return db.SaveMeta(ctx, "years", strconv.Itoa(years))
}
