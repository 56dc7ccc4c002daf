// Command householdsim generates synthetic insurance households: each
// household is created, advanced year by year, and written out as feature
// rows with its claim ledger.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/household-sim/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "householdsim",
		Short: "Synthetic household insurance data generator",
		Long: `householdsim simulates households of drivers, vehicles and homes
over many years and records the claims they file.

Every household draws from its own seeded stream, so a run is
reproducible from its seed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().Int64("seed", 0, "Base seed (household i uses seed+i)")
	rootCmd.PersistentFlags().Int("years", 0, "Years to advance each household")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newSampleCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// loadConfig resolves the config file, environment and any flags the user
// set explicitly, in that order, and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("years") {
		cfg.Years, _ = flags.GetInt("years")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Lookup("households") != nil && flags.Changed("households") {
		cfg.Households, _ = flags.GetInt("households")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Lookup("db") != nil && flags.Changed("db") {
		cfg.Database, _ = flags.GetString("db")
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.Listen, _ = flags.GetString("listen")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return cfg, nil
}
