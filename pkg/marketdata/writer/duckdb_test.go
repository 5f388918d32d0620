package writer

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GRTran/backtester/internal/logger"
	"github.com/GRTran/backtester/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	dir    string
	logger *logger.Logger
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.logger = logger.NewNopLogger()
}

func (suite *DuckDBWriterTestSuite) bars() []types.MarketData {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	return []types.MarketData{
		{Symbol: "MSFT", Time: day, Open: 370, High: 375, Low: 366, Close: 370.5, AdjClose: 368.1, Volume: 25e6},
		{Id: "fixed", Symbol: "AAPL", Time: day, Open: 187, High: 188, Low: 183, Close: 185.6, AdjClose: 184.9, Volume: 82e6},
		{Symbol: "AAPL", Time: day.AddDate(0, 0, 1), Open: 184, High: 185, Low: 182, Close: 184.3, AdjClose: 183.6, Volume: 58e6},
	}
}

func (suite *DuckDBWriterTestSuite) write(path string) MarketDataWriter {
	w := NewDuckDBWriter(path, suite.logger)
	suite.Require().NoError(w.Initialize())

	for _, bar := range suite.bars() {
		suite.Require().NoError(w.Write(bar))
	}

	return w
}

func (suite *DuckDBWriterTestSuite) TestParquetExport() {
	path := filepath.Join(suite.dir, "bars.parquet")
	w := suite.write(path)
	defer w.Close()

	out, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(path, out)
	suite.Equal(path, w.GetOutputPath())

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(`SELECT id, symbol, adj_close FROM read_parquet('` + path + `') ORDER BY time, symbol`)
	suite.Require().NoError(err)
	defer rows.Close()

	var (
		ids      []string
		symbols  []string
		adjClose []float64
	)

	for rows.Next() {
		var (
			id, symbol string
			adj        float64
		)

		suite.Require().NoError(rows.Scan(&id, &symbol, &adj))
		ids = append(ids, id)
		symbols = append(symbols, symbol)
		adjClose = append(adjClose, adj)
	}

	suite.Require().NoError(rows.Err())
	suite.Equal([]string{"AAPL", "MSFT", "AAPL"}, symbols)
	suite.Equal([]float64{184.9, 368.1, 183.6}, adjClose)
	suite.Equal("fixed", ids[0])
	suite.NotEmpty(ids[1])
}

func (suite *DuckDBWriterTestSuite) TestCSVExport() {
	path := filepath.Join(suite.dir, "bars.csv")
	w := suite.write(path)
	defer w.Close()

	_, err := w.Finalize()
	suite.Require().NoError(err)

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	suite.Len(lines, 4)
	suite.Equal("id,time,symbol,open,high,low,close,adj_close,volume", lines[0])
}

func (suite *DuckDBWriterTestSuite) TestNotInitialized() {
	w := NewDuckDBWriter(filepath.Join(suite.dir, "x.parquet"), suite.logger)

	suite.Error(w.Write(types.MarketData{Symbol: "A"}))

	_, err := w.Finalize()
	suite.Error(err)
	suite.NoError(w.Close())
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	w := suite.write(filepath.Join(suite.dir, "unfinished.parquet"))

	suite.NoError(w.Close())
	suite.NoFileExists(filepath.Join(suite.dir, "unfinished.parquet"))
}
