package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GRTran/backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const sandp500 = `,symbol,security,GICS sector,GICS sub-industry
0,MMM,3M,Industrials,Industrial Conglomerates
1,AOS,A. O. Smith,Industrials,Building Products
2,ABT,Abbott,Health Care,Health Care Equipment
3, AAPL ,Apple Inc.,Information Technology,"Technology Hardware, Storage & Peripherals"
4,,Blank,Industrials,None
5,MMM,3M,Industrials,Industrial Conglomerates
`

type UniverseTestSuite struct {
	suite.Suite
	dir string
}

func TestUniverseSuite(t *testing.T) {
	suite.Run(t, new(UniverseTestSuite))
}

func (suite *UniverseTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *UniverseTestSuite) write(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *UniverseTestSuite) TestLoad() {
	u, err := Load(suite.write("sandp500.csv", sandp500))
	suite.Require().NoError(err)

	suite.Equal("sandp500", u.Name)
	suite.Len(u.Members, 5)
	suite.Equal([]string{"MMM", "AOS", "ABT", "AAPL"}, u.Symbols())
	suite.Equal(Member{
		Symbol:      "AAPL",
		Security:    "Apple Inc.",
		Sector:      "Information Technology",
		SubIndustry: "Technology Hardware, Storage & Peripherals",
	}, u.Members[3])
}

func (suite *UniverseTestSuite) TestSector() {
	u, err := Load(suite.write("sandp500.csv", sandp500))
	suite.Require().NoError(err)

	suite.Equal([]string{"MMM", "AOS"}, u.Sector("industrials").Symbols())
	suite.Empty(u.Sector("Energy").Symbols())
}

func (suite *UniverseTestSuite) TestLoadErrors() {
	_, err := Load(filepath.Join(suite.dir, "missing.csv"))
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))

	_, err = Load(suite.write("empty.csv", "symbol,security,GICS sector,GICS sub-industry\n,,,\n"))
	suite.Equal(errors.ErrCodeInvalidUniverse, errors.GetCode(err))
}
