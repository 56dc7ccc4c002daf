package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/talgya/household-sim/internal/engine"
)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Simulate one household and print its summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			index, _ := cmd.Flags().GetInt("index")
			perVehicle, _ := cmd.Flags().GetBool("per-vehicle")
			debug, _ := cmd.Flags().GetBool("debug")

			runner := &engine.Runner{Seed: cfg.Seed, Years: cfg.Years, Workers: 1}
			res, err := runner.Simulate(cmd.Context(), index)
			if err != nil {
				return err
			}

			var out any = res.Summary
			switch {
			case perVehicle:
				out = res.Vehicles
			case debug:
				out = res.Household.SummaryWithDebugging()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().Int("index", 0, "Household index within the run (seed+index)")
	cmd.Flags().Bool("per-vehicle", false, "Print one row per vehicle")
	cmd.Flags().Bool("debug", false, "Include latent household state")
	return cmd
}
