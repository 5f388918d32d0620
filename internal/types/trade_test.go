package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestLongPosition() {
	p := Position{Symbol: "AAA", EntryPrice: 100, Shares: 5}

	suite.Equal("500", p.Cost().String())
	suite.Equal("50", p.PnL(110).String())
	suite.Equal("550", p.Credit(110).String())
	suite.Equal("-50", p.PnL(90).String())
}

func (suite *TradeTestSuite) TestShortPosition() {
	p := Position{Symbol: "AAA", EntryPrice: 100, Shares: -5}

	suite.Equal("500", p.Cost().String())
	// a short gains when the price falls
	suite.Equal("50", p.PnL(90).String())
	suite.Equal("550", p.Credit(90).String())
	suite.Equal("-50", p.PnL(110).String())
	suite.Equal("450", p.Credit(110).String())
}

func (suite *TradeTestSuite) TestTradeClosed() {
	trade := Trade{ID: 0, Symbol: "AAA", OpenPrice: 10, Shares: -2, OpenTime: time.Now()}
	suite.False(trade.IsClosed())
	suite.Equal(PositionTypeShort, trade.Side())

	trade.ClosePrice = optional.Some(9.0)
	trade.PnL = optional.Some(2.0)
	suite.True(trade.IsClosed())
}

func (suite *TradeTestSuite) TestOrder() {
	order := Order{Instrument: 1, Symbol: "BBB", Shares: -4}
	suite.False(order.IsZero())
	suite.Equal(PositionTypeShort, order.Side())
	suite.Equal(40.0, order.Notional(10))

	suite.True(Order{}.IsZero())
	suite.Equal(PositionTypeLong, Order{Shares: 1}.Side())
}
