package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [symbol...]",
	Short: "Evaluate tickers once and print the signals",
	Long:  `Fetches and evaluates each symbol (or the configured watch list) once. Nothing is recorded or sent.`,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	symbols := args
	if len(symbols) == 0 {
		symbols = config.LoadTickers(cfg.Files.Tickers)
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	col := collector.NewCollector(newFetcher(cfg), cfg.DataSource.Timeframes, logger)

	out := cmd.OutOrStdout()
	var failed int
	for _, s := range symbols {
		symbol := strings.ToUpper(s)
		set, err := col.Collect(ctx, symbol)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%-6s ERROR %v\n", symbol, err)
			continue
		}
		d := ev.Evaluate(set)
		fmt.Fprintf(out, "%-6s %-4s $%.2f  %s\n", symbol, d.Signal, d.Price, d.Reason)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
	}
	return nil
}
