package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "statistics_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *StatisticsTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *StatisticsTestSuite) TestWriteAndReadBacktestStats() {
	halted := 4
	stats := BacktestStats{
		ID:             "run-1",
		Timestamp:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EngineVersion:  "v1.0.0",
		Strategy:       StrategyInfo{Name: "zscore"},
		Status:         RunStatusHalted,
		HaltedAtPeriod: &halted,
		Periods:        10,
		Instruments:    []string{"AAA", "BBB"},
		Cash:           CashResult{InitialCash: 1000, FinalCash: 1100, TotalReturn: 0.1, MaxDrawdown: 0.05},
		TradeResult:    TradeResult{NumberOfTrades: 4, NumberOfWinningTrades: 3, NumberOfLosingTrades: 1, WinRate: 0.75},
		TradePnl:       TradePnl{RealizedPnL: 100, MaximumLoss: -10, MaximumProfit: 60, AveragePnL: 25},
		Diagnostics:    Diagnostics{RejectedOrders: 1},
		Symbols:        []TradeStats{{Symbol: "AAA"}},
	}

	path := filepath.Join(suite.tempDir, "stats.yaml")
	suite.Require().NoError(WriteBacktestStats(path, stats))

	got, err := ReadBacktestStats(path)
	suite.Require().NoError(err)
	suite.True(stats.Timestamp.Equal(got.Timestamp))

	got.Timestamp = stats.Timestamp
	suite.Equal(stats, got)
}

func (suite *StatisticsTestSuite) TestWriteBacktestStatsInvalidPath() {
	err := WriteBacktestStats(filepath.Join(suite.tempDir, "missing", "stats.yaml"), BacktestStats{})
	suite.Error(err)
}

func (suite *StatisticsTestSuite) TestReadBacktestStatsMissing() {
	_, err := ReadBacktestStats(filepath.Join(suite.tempDir, "nope.yaml"))
	suite.Error(err)
}

func (suite *StatisticsTestSuite) TestMaxDrawdown() {
	tests := []struct {
		name     string
		cash     []float64
		expected float64
	}{
		{name: "empty", cash: nil, expected: 0},
		{name: "rising", cash: []float64{100, 110, 120}, expected: 0},
		{name: "single dip", cash: []float64{100, 80, 120}, expected: 0.2},
		{name: "deeper later", cash: []float64{100, 90, 200, 100}, expected: 0.5},
		{name: "negative tail", cash: []float64{100, -50}, expected: 1.5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, MaxDrawdown(tc.cash), 1e-12)
		})
	}
}
