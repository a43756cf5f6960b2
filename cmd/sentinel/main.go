package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"SwingSentinel/internal/config"
	"SwingSentinel/internal/util"
)

var (
	cfgPath string

	// Global state set by the root command before any subcommand runs
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sentinel",
	Short:         "Swing-trade signal monitor",
	Long:          `SwingSentinel polls price history for a watch list, evaluates BUY/SELL/HOLD signals and alerts on new ones.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		logger = util.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

func init() {
	path := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", path, "Configuration file path")
	rootCmd.AddCommand(runCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
