package marketdata

import (
	"fmt"

	"github.com/polygon-io/client-go/rest/models"
)

// Timespan is a compact candle interval such as "5m" or "1d".
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

type span struct {
	multiplier int
	unit       models.Timespan
}

var spans = map[Timespan]span{
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

// ParseTimespan converts an interval string like "15m" into a Timespan.
func ParseTimespan(s string) (Timespan, error) {
	t := Timespan(s)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported timespan: %s", s)
	}

	return t, nil
}

// Valid reports whether the timespan is one of the supported intervals.
func (t Timespan) Valid() bool {
	_, ok := spans[t]
	return ok
}

// Multiplier returns how many units the timespan covers, e.g. 15 for "15m".
// Unknown timespans fall back to 1.
func (t Timespan) Multiplier() int {
	s, ok := spans[t]
	if !ok {
		return 1
	}

	return s.multiplier
}

// Unit returns the aggregation unit, e.g. models.Minute for "15m".
// Unknown timespans fall back to models.Day.
func (t Timespan) Unit() models.Timespan {
	s, ok := spans[t]
	if !ok {
		return models.Day
	}

	return s.unit
}
