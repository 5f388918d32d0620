package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/GRTran/backtester/internal/strategy"
	"github.com/urfave/cli/v3"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	opts := options{
		ConfigPath:         cmd.String("config"),
		DataPath:           cmd.String("data"),
		Strategy:           cmd.String("strategy"),
		StrategyConfigPath: cmd.String("strategy-config"),
		Tickers:            cmd.StringSlice("tickers"),
		UniversePath:       cmd.String("universe"),
		Sector:             cmd.String("sector"),
		ResultsRoot:        cmd.String("results"),
		Context:            cmd.String("context"),
		Progress:           !cmd.Bool("quiet"),
	}

	result, err := runBacktest(ctx, opts)
	if result != nil {
		printSummary(result)
	}

	return err
}

func printSummary(result *result) {
	stats := result.Stats
	fmt.Printf("Run %s (%s) %s after %d periods\n", stats.ID, stats.Strategy.Name, stats.Status, stats.Periods)
	fmt.Printf("- Instruments: %d\n", len(stats.Instruments))
	fmt.Printf("- Final cash: %.2f (return %.2f%%, max drawdown %.2f%%)\n",
		stats.Cash.FinalCash, stats.Cash.TotalReturn*100, stats.Cash.MaxDrawdown*100)
	fmt.Printf("- Trades: %d, win rate %.2f%%, realized PnL %.2f\n",
		stats.TradeResult.NumberOfTrades, stats.TradeResult.WinRate*100, stats.TradePnl.RealizedPnL)
	fmt.Printf("- Rejected orders: %d, degenerate signals: %d\n",
		stats.Diagnostics.RejectedOrders, stats.Diagnostics.DegenerateSignals)
	fmt.Printf("Results written to %s\n", result.Folder)
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Simulate a strategy against a historical price file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine config `YAML`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Price file (.parquet, long or wide .csv)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   fmt.Sprintf("Strategy to run (%s)", strings.Join(strategy.Names(), ", ")),
				Value:   "zscore",
			},
			&cli.StringFlag{
				Name:  "strategy-config",
				Usage: "Optional strategy config `YAML`",
			},
			&cli.StringSliceFlag{
				Name:    "tickers",
				Aliases: []string{"t"},
				Usage:   "Instruments to trade. Defaults to the universe, or every symbol in the data file",
			},
			&cli.StringFlag{
				Name:    "universe",
				Aliases: []string{"u"},
				Usage:   "Universe CSV (symbol, security, GICS sector, GICS sub-industry)",
			},
			&cli.StringFlag{
				Name:  "sector",
				Usage: "Restrict the universe to one GICS sector",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Root folder of the results",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "Opaque value passed to the strategy on every call",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide the progress bar",
			},
		},
		Action: backtestAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
