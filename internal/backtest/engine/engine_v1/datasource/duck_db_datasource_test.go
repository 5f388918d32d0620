package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	dir string
	ds  DataSource
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	ds, err := NewDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.ds = ds
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	suite.NoError(suite.ds.Close())
}

// writeParquet converts a CSV fixture to parquet with DuckDB itself.
func (suite *DuckDBDataSourceTestSuite) writeParquet(content string) string {
	csvPath := writeFile(suite.dir, "fixture.csv", content)
	parquetPath := filepath.Join(suite.dir, "fixture.parquet")

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)

	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM read_csv_auto('%s')) TO '%s' (FORMAT PARQUET)`, csvPath, parquetPath))
	suite.Require().NoError(err)

	return parquetPath
}

func (suite *DuckDBDataSourceTestSuite) TestParquet() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeParquet(longCSV)))

	bars, err := readAll(suite.ds)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 6)

	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal("MSFT", bars[1].Symbol)
	suite.True(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Equal(bars[0].Time))
	suite.Equal(10.4, bars[0].AdjClose)
	suite.Equal(2000.0, bars[1].Volume)

	symbols, err := suite.ds.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, symbols)
}

func (suite *DuckDBDataSourceTestSuite) TestCSV() {
	suite.Require().NoError(suite.ds.Initialize(writeFile(suite.dir, "bars.csv", longCSV)))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(6, count)
}

func (suite *DuckDBDataSourceTestSuite) TestTimeRange() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeParquet(longCSV)))

	start := optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	count, err := suite.ds.Count(start, end)
	suite.NoError(err)
	suite.Equal(2, count)

	n := 0
	for bar, err := range suite.ds.ReadAll(start, end) {
		suite.Require().NoError(err)
		suite.True(start.Unwrap().Equal(bar.Time))
		n++
	}

	suite.Equal(2, n)
}

func (suite *DuckDBDataSourceTestSuite) TestAdjCloseFallsBackToClose() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeParquet(longCSVNoAdjClose)))

	bars, err := readAll(suite.ds)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	for _, bar := range bars {
		suite.Equal(bar.Close, bar.AdjClose)
	}
}

func (suite *DuckDBDataSourceTestSuite) TestMissingColumn() {
	path := suite.writeParquet("time,symbol,close\n2024-01-02,AAPL,1\n")

	err := suite.ds.Initialize(path)
	suite.Error(err)
	suite.Equal(errors.ErrCodeMissingField, errors.GetCode(err))
}

func (suite *DuckDBDataSourceTestSuite) TestMissingFile() {
	err := suite.ds.Initialize(filepath.Join(suite.dir, "missing.parquet"))
	suite.Error(err)
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
}

func (suite *DuckDBDataSourceTestSuite) TestReinitialize() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeParquet(longCSVNoAdjClose)))
	suite.Require().NoError(suite.ds.Initialize(writeFile(suite.dir, "bars.csv", longCSV)))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(6, count)
}
