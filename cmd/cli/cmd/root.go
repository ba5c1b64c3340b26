// Package cmd provides the CLI commands for costcalc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"costcalc/core/bus"
	"costcalc/core/calculators"
	"costcalc/core/pricing"
	"costcalc/core/record"
	"costcalc/core/registry"
	"costcalc/core/runner"
	"costcalc/internal/config"
	"costcalc/internal/logging"
)

var (
	cfgFile string
	verbose bool
	offline bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "costcalc",
	Short: "Estimate construction project costs",
	Long: `costcalc is a rough-order-of-magnitude construction cost estimator.

It runs pluggable calculators (concrete, framing, paint) against a regional
pricing table and shows the full math behind every estimate.

Examples:
  costcalc estimate --calculator concrete --set length_ft=20 --set width_ft=10 --set thickness_in=4
  costcalc estimate ./remodel.hcl --format csv
  costcalc calculators
  costcalc pricing midwest --calculator concrete`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus COSTCALC_* env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never fetch remote pricing")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(calculatorsCmd)
	rootCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	} else {
		config.Set(config.LoadEnv())
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if offline {
		cfg.Pricing.OfflineOnly = true
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// buildRunner assembles the runner from the active configuration.
// Every command shares this wiring so overrides and preferences behave
// the same everywhere.
func buildRunner() *runner.Runner {
	cfg := config.Get()

	var opts []pricing.Option
	if cfg.Pricing.URL != "" && !cfg.Pricing.OfflineOnly {
		opts = append(opts, pricing.WithURL(cfg.Pricing.URL))
	}
	resolver := pricing.NewResolver(opts...)

	reg := registry.NewRegistry()
	calculators.RegisterAll(reg, resolver)

	store := record.NewStore(cfg.DataDir)
	if cfg.HistoryLimit > 0 {
		store = store.WithLimit(cfg.HistoryLimit)
	}

	return runner.New(reg, resolver, bus.New(), store)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("costcalc version 0.1.0")
	},
}
