package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/GRTran/backtester/internal/backtest/engine"
	engine_v1 "github.com/GRTran/backtester/internal/backtest/engine/engine_v1"
	"github.com/GRTran/backtester/internal/backtest/engine/engine_v1/datasource"
	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/strategy"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/internal/universe"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type options struct {
	ConfigPath         string
	DataPath           string
	Strategy           string
	StrategyConfigPath string
	Tickers            []string
	UniversePath       string
	Sector             string
	ResultsRoot        string
	Context            string
	Progress           bool
}

type result struct {
	Stats  types.BacktestStats
	Folder string
}

// runBacktest loads the data, runs the strategy and writes the results. A
// halted run still writes its results and returns them with the halt error.
func runBacktest(ctx context.Context, opts options) (*result, error) {
	rawConfig, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", opts.ConfigPath)
	}

	config := engine_v1.EmptyConfig()
	if err := yaml.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	log, err := logger.NewLoggerWithLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	strategyConfig := ""
	if opts.StrategyConfigPath != "" {
		raw, err := os.ReadFile(opts.StrategyConfigPath)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read strategy config %s", opts.StrategyConfigPath)
		}

		strategyConfig = string(raw)
	}

	strat, err := strategy.New(opts.Strategy, strategyConfig)
	if err != nil {
		return nil, err
	}

	ds, err := datasource.Open(opts.DataPath, log)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	instruments, err := resolveInstruments(ds, opts, log)
	if err != nil {
		return nil, err
	}

	series, err := datasource.LoadPriceSeries(ds, instruments, config.StartTime, config.EndTime)
	if err != nil {
		return nil, err
	}

	log.Info("Price series loaded",
		zap.String("data", opts.DataPath),
		zap.Int("instruments", series.NumInstruments()),
		zap.Int("periods", series.Len()),
	)

	backtester := engine_v1.NewBacktestEngineV1()

	if err := backtester.Initialize(string(rawConfig)); err != nil {
		return nil, err
	}

	if err := backtester.LoadStrategy(strat); err != nil {
		return nil, err
	}

	if err := backtester.SetPriceSeries(series); err != nil {
		return nil, err
	}

	if opts.Context != "" {
		if err := backtester.SetContext(opts.Context); err != nil {
			return nil, err
		}
	}

	runErr := backtester.Run(ctx, progressCallbacks(opts.Progress))
	if runErr != nil && backtester.State().Status != engine.RunStatusHalted {
		return nil, runErr
	}

	folder := engine_v1.ResultsFolder(opts.ResultsRoot, strat.Name(), config)
	if err := backtester.WriteResults(folder); err != nil {
		return nil, err
	}

	stats, err := backtester.Stats()
	if err != nil {
		return nil, err
	}

	return &result{Stats: stats, Folder: folder}, runErr
}

// resolveInstruments picks the tickers flag, then the universe restricted to
// symbols the data file holds, then every symbol in the file.
func resolveInstruments(ds datasource.DataSource, opts options, log *logger.Logger) ([]string, error) {
	if len(opts.Tickers) > 0 {
		return opts.Tickers, nil
	}

	if opts.UniversePath == "" {
		return nil, nil
	}

	u, err := universe.Load(opts.UniversePath)
	if err != nil {
		return nil, err
	}

	if opts.Sector != "" {
		u = u.Sector(opts.Sector)
	}

	available, err := ds.Symbols()
	if err != nil {
		return nil, err
	}

	var instruments, missing []string

	for _, symbol := range u.Symbols() {
		if slices.Contains(available, symbol) {
			instruments = append(instruments, symbol)
		} else {
			missing = append(missing, symbol)
		}
	}

	if len(missing) > 0 {
		log.Warn("Universe members missing from data file", zap.Strings("symbols", missing))
	}

	if len(instruments) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidUniverse, "no member of universe %s is in %s", u.Name, opts.DataPath)
	}

	return instruments, nil
}

func progressCallbacks(show bool) engine.LifecycleCallbacks {
	if !show {
		return engine.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, strategyName string, totalPeriods int) error {
		bar = progressbar.NewOptions(totalPeriods,
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", strategyName)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})

	onPeriodEnd := engine.OnPeriodEndCallback(func(period int, totalPeriods int, cash float64) error {
		if bar != nil {
			_ = bar.Add(1)
		}

		return nil
	})

	onRunEnd := engine.OnRunEndCallback(func(runID string, state engine.RunState) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return engine.LifecycleCallbacks{
		OnRunStart:  &onRunStart,
		OnPeriodEnd: &onPeriodEnd,
		OnRunEnd:    &onRunEnd,
	}
}
