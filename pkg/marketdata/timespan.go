package marketdata

import (
	"sort"

	"github.com/GRTran/backtester/pkg/errors"
	"github.com/polygon-io/client-go/rest/models"
)

// Timespan is a sampling interval such as "1d" or "15m".
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

// DefaultTimespan is the interval used when none is configured.
const DefaultTimespan = TimespanOneDay

type interval struct {
	multiplier int
	unit       models.Timespan
}

var intervals = map[Timespan]interval{
	TimespanOneSecond:      {1, models.Second},
	TimespanOneMinute:      {1, models.Minute},
	TimespanThreeMinutes:   {3, models.Minute},
	TimespanFiveMinutes:    {5, models.Minute},
	TimespanFifteenMinutes: {15, models.Minute},
	TimespanThirtyMinutes:  {30, models.Minute},
	TimespanOneHour:        {1, models.Hour},
	TimespanTwoHours:       {2, models.Hour},
	TimespanFourHours:      {4, models.Hour},
	TimespanSixHours:       {6, models.Hour},
	TimespanEightHours:     {8, models.Hour},
	TimespanTwelveHours:    {12, models.Hour},
	TimespanOneDay:         {1, models.Day},
	TimespanThreeDays:      {3, models.Day},
	TimespanOneWeek:        {1, models.Week},
	TimespanOneMonth:       {1, models.Month},
}

// ParseTimespan checks that s names a supported interval. An empty string gives DefaultTimespan.
func ParseTimespan(s string) (Timespan, error) {
	if s == "" {
		return DefaultTimespan, nil
	}

	t := Timespan(s)
	if _, ok := intervals[t]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q", s)
	}

	return t, nil
}

// AllTimespans lists the supported intervals in sorted order.
func AllTimespans() []Timespan {
	all := make([]Timespan, 0, len(intervals))
	for t := range intervals {
		all = append(all, t)
	}

	sort.Slice(all, func(a, b int) bool { return all[a] < all[b] })

	return all
}

// Multiplier returns the unit count of t, 1 for unknown intervals.
func (t Timespan) Multiplier() int {
	if i, ok := intervals[t]; ok {
		return i.multiplier
	}

	return 1
}

// Timespan returns the polygon unit of t, a day for unknown intervals.
func (t Timespan) Timespan() models.Timespan {
	if i, ok := intervals[t]; ok {
		return i.unit
	}

	return models.Day
}
