package datasource

import (
	"math"
	"strings"
	"testing"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type WideCSVDataSourceTestSuite struct {
	suite.Suite
}

func TestWideCSVDataSourceSuite(t *testing.T) {
	suite.Run(t, new(WideCSVDataSourceTestSuite))
}

func (suite *WideCSVDataSourceTestSuite) TestParse() {
	bars, err := parseWideCSV(strings.NewReader(wideCSV))
	suite.Require().NoError(err)

	// MSFT has no values on the last date
	suite.Len(bars, 5)

	var aapl, msft int

	for _, bar := range bars {
		switch bar.Symbol {
		case "AAPL":
			aapl++
		case "MSFT":
			msft++
		}
	}

	suite.Equal(3, aapl)
	suite.Equal(2, msft)
}

func (suite *WideCSVDataSourceTestSuite) TestInitializeOrdersBars() {
	ds := NewWideCSVDataSource(logger.NewNopLogger())
	suite.Require().NoError(ds.Initialize(writeFile(suite.T().TempDir(), "wide.csv", wideCSV)))

	bars, err := readAll(ds)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 5)

	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal("MSFT", bars[1].Symbol)
	suite.Equal(10.4, bars[0].AdjClose)
	suite.Equal(10.5, bars[0].Close)
	suite.Equal(11.0, bars[0].High)
	suite.Equal(9.0, bars[0].Low)
	suite.Equal(10.0, bars[0].Open)
	suite.Equal(1000.0, bars[0].Volume)
	suite.Equal(20.4, bars[1].AdjClose)
}

func (suite *WideCSVDataSourceTestSuite) TestWithoutIndexRowAndAdjClose() {
	input := `Price,Close,Close,Open,Open
Ticker,AAPL,MSFT,AAPL,MSFT
2024-01-02,10.5,20.5,10,20
`

	bars, err := parseWideCSV(strings.NewReader(input))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	for _, bar := range bars {
		suite.Equal(bar.Close, bar.AdjClose)
	}
}

func (suite *WideCSVDataSourceTestSuite) TestPartialRowKeepsNaN() {
	input := `,Adj Close,Close,Open
,AAPL,AAPL,AAPL
2024-01-02,,10.5,10
`

	bars, err := parseWideCSV(strings.NewReader(input))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)
	suite.True(math.IsNaN(bars[0].AdjClose))
}

func (suite *WideCSVDataSourceTestSuite) TestMalformed() {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single header", ",Close\n"},
		{"header width mismatch", ",Close,Open\n,AAPL\n"},
		{"no price columns", ",Foo\n,AAPL\n"},
		{"missing open", ",Close\n,AAPL\n2024-01-02,1\n"},
		{"missing ticker", ",Close,Open\n,,AAPL\n"},
		{"bad number", ",Close,Open\n,AAPL,AAPL\n2024-01-02,abc,1\n"},
		{"bad date", ",Close,Open\n,AAPL,AAPL\nsoon,1,1\n"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := parseWideCSV(strings.NewReader(tc.input))
			suite.Error(err)
		})
	}
}

func (suite *WideCSVDataSourceTestSuite) TestInitializeWrapsParseError() {
	ds := NewWideCSVDataSource(logger.NewNopLogger())
	err := ds.Initialize(writeFile(suite.T().TempDir(), "wide.csv", ",Foo\n,AAPL\n"))
	suite.Error(err)
	suite.Equal(errors.ErrCodeMalformedData, errors.GetCode(err))
}
