package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"SwingSentinel/internal/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the polling daemon",
	RunE:  runDaemon,
}

var runOnStart bool

func init() {
	runCmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "Run one cycle immediately instead of waiting a full interval")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger.Info().Msg("SwingSentinel starting...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics endpoint listening")
	}

	if err := a.sched.Register(); err != nil {
		return err
	}
	a.sched.Start()
	defer a.sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, a.sched.HandleCommand)
		logger.Info().Msg("Telegram polling started")
	}

	if runOnStart {
		logger.Info().Msg("run-on-start enabled, executing cycle now")
		a.sched.RunInBackground()
	}

	logger.Info().Strs("senders", a.notifier.Senders()).Msg("SwingSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
	return nil
}
