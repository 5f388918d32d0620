package types

import (
	"math"
	"sort"
	"time"

	"github.com/GRTran/backtester/pkg/errors"
)

// Period is one observation of the series: field -> instrument -> value.
type Period struct {
	Time   time.Time
	Values map[Field]map[string]float64
}

// PriceSeries is an immutable, time-ordered sequence of periods over a fixed
// instrument set. Values are stored densely as field -> period -> instrument.
type PriceSeries struct {
	instruments []string
	index       map[string]int
	fields      []Field
	times       []time.Time
	values      map[Field][][]float64
}

// NewPriceSeries builds a series from per-period field maps. Every period must
// carry the same fields as the first one, and every field must hold a finite value
// for every instrument. Periods must be strictly increasing in time.
func NewPriceSeries(instruments []string, periods []Period) (*PriceSeries, error) {
	ps, err := newEmptySeries(instruments, len(periods))
	if err != nil {
		return nil, err
	}

	if len(periods) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientData, "price series must contain at least one period")
	}

	for f := range periods[0].Values {
		ps.fields = append(ps.fields, f)
	}

	sortFields(ps.fields)

	for _, f := range ps.fields {
		ps.values[f] = make([][]float64, len(periods))
	}

	for i, period := range periods {
		if i > 0 && !period.Time.After(periods[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeDuplicatePeriod,
				"period %d (%s) is not after period %d (%s)", i, period.Time.Format(time.RFC3339), i-1, periods[i-1].Time.Format(time.RFC3339))
		}

		if len(period.Values) != len(ps.fields) {
			return nil, errors.Newf(errors.ErrCodeMissingField,
				"period %d has %d fields, expected %d", i, len(period.Values), len(ps.fields))
		}

		ps.times[i] = period.Time

		for _, f := range ps.fields {
			byInstrument, ok := period.Values[f]
			if !ok {
				return nil, errors.Newf(errors.ErrCodeMissingField, "period %d is missing field %s", i, f)
			}

			row := make([]float64, len(instruments))

			for k, symbol := range instruments {
				v, ok := byInstrument[symbol]
				if !ok {
					return nil, errors.Newf(errors.ErrCodeMissingInstrument,
						"period %d field %s is missing instrument %s", i, f, symbol)
				}

				row[k] = v
			}

			ps.values[f][i] = row
		}
	}

	if err := ps.checkFinite(); err != nil {
		return nil, err
	}

	return ps, nil
}

// NewPriceSeriesFromBars pivots long-format bars into a series over instruments.
// Bars for symbols outside instruments are ignored. Every timestamp must carry
// exactly one bar per instrument.
func NewPriceSeriesFromBars(instruments []string, bars []MarketData) (*PriceSeries, error) {
	ps, err := newEmptySeries(instruments, 0)
	if err != nil {
		return nil, err
	}

	byTime := make(map[time.Time]map[string]MarketData)

	for _, bar := range bars {
		if _, ok := ps.index[bar.Symbol]; !ok {
			continue
		}

		t := bar.Time.UTC()

		row, ok := byTime[t]
		if !ok {
			row = make(map[string]MarketData, len(instruments))
			byTime[t] = row
		}

		if _, dup := row[bar.Symbol]; dup {
			return nil, errors.Newf(errors.ErrCodeDuplicatePeriod,
				"duplicate bar for %s at %s", bar.Symbol, t.Format(time.RFC3339))
		}

		row[bar.Symbol] = bar
	}

	if len(byTime) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "no bars found for the requested instruments")
	}

	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}

	sort.Slice(times, func(a, b int) bool { return times[a].Before(times[b]) })

	ps.fields = append(ps.fields, AllFields...)
	ps.times = times

	for _, f := range ps.fields {
		ps.values[f] = make([][]float64, len(times))
	}

	for i, t := range times {
		row := byTime[t]

		for _, f := range ps.fields {
			ps.values[f][i] = make([]float64, len(instruments))
		}

		for k, symbol := range instruments {
			bar, ok := row[symbol]
			if !ok {
				return nil, errors.Newf(errors.ErrCodeMissingInstrument,
					"no bar for %s at %s", symbol, t.Format(time.RFC3339))
			}

			for _, f := range ps.fields {
				v, _ := bar.Get(f)
				ps.values[f][i][k] = v
			}
		}
	}

	if err := ps.checkFinite(); err != nil {
		return nil, err
	}

	return ps, nil
}

func newEmptySeries(instruments []string, n int) (*PriceSeries, error) {
	if len(instruments) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "price series requires at least one instrument")
	}

	index := make(map[string]int, len(instruments))

	for k, symbol := range instruments {
		if symbol == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "instrument %d has an empty symbol", k)
		}

		if _, dup := index[symbol]; dup {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "instrument %s listed twice", symbol)
		}

		index[symbol] = k
	}

	return &PriceSeries{
		instruments: append([]string(nil), instruments...),
		index:       index,
		times:       make([]time.Time, n),
		values:      make(map[Field][][]float64),
	}, nil
}

func (p *PriceSeries) checkFinite() error {
	for _, f := range p.fields {
		for i, row := range p.values[f] {
			for k, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return errors.Newf(errors.ErrCodeInvalidPriceSeries,
						"non-finite %s for %s at period %d", f, p.instruments[k], i)
				}
			}
		}
	}

	return nil
}

// Validate checks that each named field is present and strictly positive for
// every instrument and period.
func (p *PriceSeries) Validate(fields ...Field) error {
	for _, f := range fields {
		rows, ok := p.values[f]
		if !ok {
			return errors.Newf(errors.ErrCodeMissingField, "price series has no %s field", f)
		}

		for i, row := range rows {
			for k, v := range row {
				if v <= 0 {
					return errors.Newf(errors.ErrCodeInvalidPriceSeries,
						"%s for %s at period %d must be positive, got %v", f, p.instruments[k], i, v)
				}
			}
		}
	}

	return nil
}

// Len returns the number of periods.
func (p *PriceSeries) Len() int {
	return len(p.times)
}

// NumInstruments returns the size of the instrument set.
func (p *PriceSeries) NumInstruments() int {
	return len(p.instruments)
}

// Instruments returns a copy of the instrument list in its fixed order.
func (p *PriceSeries) Instruments() []string {
	return append([]string(nil), p.instruments...)
}

// InstrumentIndex returns the position of symbol in the instrument list.
func (p *PriceSeries) InstrumentIndex(symbol string) (int, bool) {
	k, ok := p.index[symbol]

	return k, ok
}

// Fields returns the fields held by the series.
func (p *PriceSeries) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// HasField reports whether f is held by the series.
func (p *PriceSeries) HasField(f Field) bool {
	_, ok := p.values[f]

	return ok
}

// Time returns the timestamp of period i.
func (p *PriceSeries) Time(i int) time.Time {
	return p.times[i]
}

// Times returns a copy of all period timestamps.
func (p *PriceSeries) Times() []time.Time {
	return append([]time.Time(nil), p.times...)
}

// Value returns field f of instrument k at period i. It panics when f is absent.
func (p *PriceSeries) Value(i int, f Field, k int) float64 {
	return p.mustField(f)[i][k]
}

// Row returns a copy of field f across instruments at period i.
func (p *PriceSeries) Row(i int, f Field) []float64 {
	return append([]float64(nil), p.mustField(f)[i]...)
}

// Last returns a copy of field f across instruments at the final period.
func (p *PriceSeries) Last(f Field) []float64 {
	return p.Row(p.Len()-1, f)
}

// Column returns a copy of field f for instrument k across all periods.
func (p *PriceSeries) Column(f Field, k int) []float64 {
	rows := p.mustField(f)
	col := make([]float64, len(rows))

	for i, row := range rows {
		col[i] = row[k]
	}

	return col
}

// Upto returns the history view of periods [0..i]. The view shares storage with p.
func (p *PriceSeries) Upto(i int) *PriceSeries {
	view := &PriceSeries{
		instruments: p.instruments,
		index:       p.index,
		fields:      p.fields,
		times:       p.times[:i+1:i+1],
		values:      make(map[Field][][]float64, len(p.values)),
	}

	for f, rows := range p.values {
		view.values[f] = rows[: i+1 : i+1]
	}

	return view
}

// Window returns the periods whose time falls in [start, end]. A zero start or
// end leaves that side unbounded.
func (p *PriceSeries) Window(start, end time.Time) (*PriceSeries, error) {
	from := 0
	if !start.IsZero() {
		from = sort.Search(len(p.times), func(i int) bool { return !p.times[i].Before(start) })
	}

	to := len(p.times)
	if !end.IsZero() {
		to = sort.Search(len(p.times), func(i int) bool { return p.times[i].After(end) })
	}

	if from >= to {
		return nil, errors.Newf(errors.ErrCodeNoDataFound,
			"no periods between %s and %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	view := &PriceSeries{
		instruments: p.instruments,
		index:       p.index,
		fields:      p.fields,
		times:       p.times[from:to:to],
		values:      make(map[Field][][]float64, len(p.values)),
	}

	for f, rows := range p.values {
		view.values[f] = rows[from:to:to]
	}

	return view, nil
}

func (p *PriceSeries) mustField(f Field) [][]float64 {
	rows, ok := p.values[f]
	if !ok {
		panic("price series has no field " + string(f))
	}

	return rows
}

func sortFields(fields []Field) {
	order := make(map[Field]int, len(AllFields))
	for i, f := range AllFields {
		order[f] = i
	}

	sort.SliceStable(fields, func(a, b int) bool {
		oa, okA := order[fields[a]]
		ob, okB := order[fields[b]]

		switch {
		case okA && okB:
			return oa < ob
		case okA != okB:
			return okA
		default:
			return fields[a] < fields[b]
		}
	})
}
