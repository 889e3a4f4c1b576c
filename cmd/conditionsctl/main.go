// Command conditionsctl fetches one canonical model through the same fallback chains the
// server uses and prints it as JSON.
//
// Usage:
//
//	conditionsctl weather --id 1 --lat 39.197 --lon -120.236 [--primary]
//	conditionsctl avalanche
//	conditionsctl chains
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/resort-conditions-aggregation/internal/app"
	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
	"github.com/i474232898/resort-conditions-aggregation/internal/config"
	"github.com/i474232898/resort-conditions-aggregation/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var service *conditions.Service

	root := &cobra.Command{
		Use:          "conditionsctl",
		Short:        "Query resort weather, avalanche and chain-control conditions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			service = app.NewService(cfg, logger, observability.NewUnregisteredMetrics())
			return nil
		},
	}

	var (
		resort  conditions.Resort
		primary bool
	)
	weatherCmd := &cobra.Command{
		Use:   "weather",
		Short: "Fetch the weather snapshot for a resort",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetch := service.GetResortWeather
			if primary {
				fetch = service.GetResortWeatherPrimary
			}
			snap, err := fetch(cmd.Context(), resort)
			if err != nil {
				return err
			}
			return printJSON(cmd, snap)
		},
	}
	weatherCmd.Flags().IntVar(&resort.ID, "id", 0, "resort id")
	weatherCmd.Flags().Float64Var(&resort.Latitude, "lat", 0, "resort latitude")
	weatherCmd.Flags().Float64Var(&resort.Longitude, "lon", 0, "resort longitude")
	weatherCmd.Flags().BoolVar(&primary, "primary", false, "query only the primary weather source")
	_ = weatherCmd.MarkFlagRequired("lat")
	_ = weatherCmd.MarkFlagRequired("lon")

	avalancheCmd := &cobra.Command{
		Use:   "avalanche",
		Short: "Fetch the regional avalanche advisory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, service.GetAvalancheDanger(cmd.Context()))
		},
	}

	chainsCmd := &cobra.Command{
		Use:   "chains",
		Short: "Fetch chain-control status for the monitored routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, service.GetChainControls(cmd.Context()))
		},
	}

	root.AddCommand(weatherCmd, avalancheCmd, chainsCmd)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
