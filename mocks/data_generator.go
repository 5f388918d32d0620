package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/GRTran/backtester/internal/types"
)

// DataGenerator generates market data for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how market data is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the first bar of the series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift over the whole series (-0.1 to 0.1 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a year of daily bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          252,
		InitialPrice:   100.0,
		Volatility:     0.015,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion. The opening
// price gaps from the previous close and adj_close equals close.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Count)
	previousClose := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := previousClose * (1 + g.rng.NormFloat64()*config.Volatility*0.25)
		if open <= 0 {
			open = previousClose
		}

		drift := config.Trend / float64(config.Count)

		close := open * (1 + g.rng.NormFloat64()*config.Volatility + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Id:       "",
			Symbol:   config.Symbol,
			Time:     currentTime,
			Open:     roundToDecimals(open, 4),
			High:     roundToDecimals(high, 4),
			Low:      roundToDecimals(low, 4),
			Close:    roundToDecimals(close, 4),
			AdjClose: roundToDecimals(close, 4),
			Volume:   roundToDecimals(volume, 2),
		}

		previousClose = close
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

// GenerateMultiSymbol generates aligned bars for multiple symbols.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.MarketData {
	var allData []types.MarketData

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		allData = append(allData, g.Generate(config)...)
	}

	return allData
}

// GeneratePriceSeries generates a price series over symbols with count daily periods.
func GeneratePriceSeries(seed int64, symbols []string, count int) (*types.PriceSeries, error) {
	config := DefaultConfig()
	config.Count = count

	return types.NewPriceSeriesFromBars(symbols, NewDataGenerator(seed).GenerateMultiSymbol(symbols, config))
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
