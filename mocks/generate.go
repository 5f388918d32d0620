package mocks

//go:generate mockgen -destination=./mock_strategy_runtime.go -package=mocks github.com/GRTran/backtester/internal/runtime StrategyRuntime
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/GRTran/backtester/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_marker.go -package=mocks github.com/GRTran/backtester/internal/marker Marker
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/GRTran/backtester/pkg/marketdata/provider Provider
