package main

import (
	"context"
	"os"

	"github.com/GRTran/backtester/internal/universe"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/GRTran/backtester/pkg/marketdata"
)

type options struct {
	ConfigPath string
	Provider   string
	Tickers    []string
	Universe   string
	Start      string
	End        string
	Interval   string
	DataPath   string
	Format     string
	FileName   string
}

// loadConfig reads the config file when one is given, otherwise builds the
// config from the flag values. Either way it is validated.
func loadConfig(opts options) (*marketdata.DownloadConfig, error) {
	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read %s", opts.ConfigPath)
		}

		return marketdata.ParseDownloadConfig(data)
	}

	config := &marketdata.DownloadConfig{
		Provider:  marketdata.ProviderType(opts.Provider),
		Tickers:   opts.Tickers,
		Universe:  opts.Universe,
		StartDate: opts.Start,
		EndDate:   opts.End,
		Interval:  opts.Interval,
		DataPath:  opts.DataPath,
		Format:    opts.Format,
		FileName:  opts.FileName,
	}
	config.ApplyEnvironment()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// resolveTickers expands the universe into tickers when none are listed.
func resolveTickers(config *marketdata.DownloadConfig) error {
	if len(config.Tickers) > 0 || config.Universe == "" {
		return nil
	}

	u, err := universe.Load(config.Universe)
	if err != nil {
		return err
	}

	config.Tickers = u.Symbols()

	return nil
}

func download(ctx context.Context, client *marketdata.Client, config *marketdata.DownloadConfig) (string, error) {
	params, err := config.ToDownloadParams()
	if err != nil {
		return "", err
	}

	return client.Download(ctx, params)
}
