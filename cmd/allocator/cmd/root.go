package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/allocator/config"
)

var rootCmd = &cobra.Command{
	Use:   "allocator",
	Short: "Pooled capital allocation across pluggable exposure and yield strategies",
	Long: `Allocator manages pooled capital across interchangeable exposure strategies
(leveraged derivatives, total-return swaps, direct holdings) and a parallel
set of yield strategies.

It provides tools for:
  - Splitting and rebalancing capital across strategies with heterogeneous
    cost, risk, and capacity profiles
  - Cost-benefit scoring of reallocation proposals
  - Failure-contained execution: one broken strategy never blocks the rest
  - Journaling every capital flow, optimization pass, and admin action`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
}

// loadConfig returns the configured or default config and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return cfg, nil
}
