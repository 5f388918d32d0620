package datasource

import (
	"testing"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/GRTran/backtester/mocks"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PriceSeriesLoaderTestSuite struct {
	suite.Suite
	dir string
}

func TestPriceSeriesLoaderSuite(t *testing.T) {
	suite.Run(t, new(PriceSeriesLoaderTestSuite))
}

func (suite *PriceSeriesLoaderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *PriceSeriesLoaderTestSuite) TestOpenPicksSource() {
	tests := []struct {
		name     string
		file     string
		content  string
		expected any
	}{
		{"long csv", "long.csv", longCSV, &CSVDataSource{}},
		{"wide csv", "wide.csv", wideCSV, &WideCSVDataSource{}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			ds, err := Open(writeFile(suite.dir, tc.file, tc.content), logger.NewNopLogger())
			suite.Require().NoError(err)

			defer ds.Close()

			suite.IsType(tc.expected, ds)
		})
	}
}

func (suite *PriceSeriesLoaderTestSuite) TestOpenUnsupported() {
	_, err := Open(writeFile(suite.dir, "bars.json", "{}"), logger.NewNopLogger())
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *PriceSeriesLoaderTestSuite) TestLoadAllSymbols() {
	ds, err := Open(writeFile(suite.dir, "long.csv", longCSV), logger.NewNopLogger())
	suite.Require().NoError(err)

	defer ds.Close()

	series, err := LoadPriceSeries(ds, nil, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	suite.Equal([]string{"AAPL", "MSFT"}, series.Instruments())
	suite.Equal(3, series.Len())
	suite.Equal(20.5, series.Value(1, types.FieldOpen, 1))
	suite.Equal(12.4, series.Value(2, types.FieldAdjClose, 0))
}

func (suite *PriceSeriesLoaderTestSuite) TestLoadSubsetAndWindow() {
	ds, err := Open(writeFile(suite.dir, "long.csv", longCSV), logger.NewNopLogger())
	suite.Require().NoError(err)

	defer ds.Close()

	series, err := LoadPriceSeries(ds, []string{"MSFT"},
		optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), optional.None[time.Time]())
	suite.Require().NoError(err)

	suite.Equal([]string{"MSFT"}, series.Instruments())
	suite.Equal(2, series.Len())
	suite.Equal(21.4, series.Value(0, types.FieldAdjClose, 0))
}

func (suite *PriceSeriesLoaderTestSuite) TestLoadWideWithGap() {
	ds, err := Open(writeFile(suite.dir, "wide.csv", wideCSV), logger.NewNopLogger())
	suite.Require().NoError(err)

	defer ds.Close()

	_, err = LoadPriceSeries(ds, nil, optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)
	suite.Equal(errors.ErrCodeMissingInstrument, errors.GetCode(err))

	series, err := LoadPriceSeries(ds, []string{"AAPL"}, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(3, series.Len())
}

func (suite *PriceSeriesLoaderTestSuite) TestLoadUnknownSymbol() {
	ds, err := Open(writeFile(suite.dir, "long.csv", longCSV), logger.NewNopLogger())
	suite.Require().NoError(err)

	defer ds.Close()

	_, err = LoadPriceSeries(ds, []string{"TSLA"}, optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)
	suite.Equal(errors.ErrCodeNoDataFound, errors.GetCode(err))
}

func (suite *PriceSeriesLoaderTestSuite) TestLoadPropagatesSourceErrors() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	none := optional.None[time.Time]()

	suite.Run("symbols", func() {
		ds := mocks.NewMockDataSource(ctrl)
		ds.EXPECT().Symbols().Return(nil, errors.New(errors.ErrCodeDataSourceUnavailable, "closed"))

		_, err := LoadPriceSeries(ds, nil, none, none)
		suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
	})

	suite.Run("read", func() {
		ds := mocks.NewMockDataSource(ctrl)
		ds.EXPECT().ReadAll(none, none).Return(func(yield func(types.MarketData, error) bool) {
			yield(types.MarketData{}, errors.New(errors.ErrCodeMalformedData, "bad row"))
		})

		_, err := LoadPriceSeries(ds, []string{"AAPL"}, none, none)
		suite.Equal(errors.ErrCodeMalformedData, errors.GetCode(err))
	})
}
