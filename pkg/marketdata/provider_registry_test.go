package marketdata

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistrySuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestProviders() {
	suite.Equal([]string{"binance", "polygon"}, GetSupportedProviders())

	info, err := GetProviderInfo("polygon")
	suite.NoError(err)
	suite.True(info.RequiresAuth)
	suite.Equal("Polygon.io", info.DisplayName)

	info, err = GetProviderInfo("binance")
	suite.NoError(err)
	suite.False(info.RequiresAuth)

	_, err = GetProviderInfo("yahoo")
	suite.Error(err)
}
