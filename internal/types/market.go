package types

import "time"

// Field names a per-instrument value held by every period of a PriceSeries.
type Field string

const (
	FieldOpen     Field = "open"
	FieldHigh     Field = "high"
	FieldLow      Field = "low"
	FieldClose    Field = "close"
	FieldAdjClose Field = "adj_close"
	FieldVolume   Field = "volume"
)

// AllFields lists the fields carried by a MarketData bar, in storage order.
var AllFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldAdjClose, FieldVolume}

// MarketData is a single long-format bar for one symbol at one time.
type MarketData struct {
	Id       string    `csv:"id" parquet:"id"`
	Symbol   string    `csv:"symbol" parquet:"symbol"`
	Time     time.Time `csv:"time" parquet:"time"`
	Open     float64   `csv:"open" parquet:"open"`
	High     float64   `csv:"high" parquet:"high"`
	Low      float64   `csv:"low" parquet:"low"`
	Close    float64   `csv:"close" parquet:"close"`
	AdjClose float64   `csv:"adj_close" parquet:"adj_close"`
	Volume   float64   `csv:"volume" parquet:"volume"`
}

// Get returns the value of field f.
func (m MarketData) Get(f Field) (float64, bool) {
	switch f {
	case FieldOpen:
		return m.Open, true
	case FieldHigh:
		return m.High, true
	case FieldLow:
		return m.Low, true
	case FieldClose:
		return m.Close, true
	case FieldAdjClose:
		return m.AdjClose, true
	case FieldVolume:
		return m.Volume, true
	default:
		return 0, false
	}
}
