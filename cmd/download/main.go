package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// downloadAction resolves the config from --config or the flags and downloads
// every ticker into a single file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(options{
		ConfigPath: cmd.String("config"),
		Provider:   cmd.String("provider"),
		Tickers:    cmd.StringSlice("tickers"),
		Universe:   cmd.String("universe"),
		Start:      cmd.String("start"),
		End:        cmd.String("end"),
		Interval:   cmd.String("interval"),
		DataPath:   cmd.String("data"),
		Format:     cmd.String("format"),
		FileName:   cmd.String("name"),
	})
	if err != nil {
		return err
	}

	if err := resolveTickers(config); err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	bar := progressbar.NewOptions(len(config.Tickers),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
	)

	client, err := marketdata.NewClient(config.ToClientConfig(), func(current float64, total float64, message string) {
		bar.Describe(message)
		_ = bar.Set(int(current))
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	fmt.Printf("Downloading %s from %s\n", strings.Join(config.Tickers, ", "), config.Provider)

	path, err := download(ctx, client, config)
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("\nMarket data written to %s\n", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical market data into a parquet or CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Download config `YAML` or JSON. Other flags are ignored when set",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s, %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringSliceFlag{
				Name:    "tickers",
				Aliases: []string{"t"},
				Usage:   "Symbols to download",
			},
			&cli.StringFlag{
				Name:    "universe",
				Aliases: []string{"u"},
				Usage:   "Universe CSV whose symbols are downloaded when no tickers are given",
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format (or RFC3339)",
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format (or RFC3339). Defaults to today",
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval, e.g. 1m, 1h or 1d",
				Value:   "1d",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (parquet, csv)",
				Value:   "parquet",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Output file name. Defaults to one built from the tickers and range",
			},
		},
		Action: downloadAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
