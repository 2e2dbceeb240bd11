package types

import "time"

type Interval string

const (
	OneMinute      Interval = "1"
	FiveMinutes    Interval = "5"
	FifteenMinutes Interval = "15"
	ThirtyMinutes  Interval = "30"
	Hour           Interval = "60"
	Day            Interval = "D"
	Week           Interval = "W"
)

var IntervalToTime = map[Interval]time.Duration{
	OneMinute:      time.Minute,
	FiveMinutes:    time.Minute * 5,
	FifteenMinutes: time.Minute * 15,
	ThirtyMinutes:  time.Minute * 30,
	Hour:           time.Hour,
	Day:            time.Hour * 24,
	Week:           time.Hour * 24 * 7,
}

// Period is a lookback window for price history.
type Period string

const (
	PeriodOneDay      Period = "1d"
	PeriodFiveDays    Period = "5d"
	PeriodOneMonth    Period = "1mo"
	PeriodThreeMonths Period = "3mo"
	PeriodSixMonths   Period = "6mo"
	PeriodOneYear     Period = "1y"
	// PeriodNinetyDays is the window used to compute recommendations.
	PeriodNinetyDays Period = "90d"
)

// ChartPeriods are the periods offered for charting, in display order.
var ChartPeriods = []Period{
	PeriodOneDay,
	PeriodFiveDays,
	PeriodOneMonth,
	PeriodThreeMonths,
	PeriodSixMonths,
	PeriodOneYear,
}

var PeriodToTime = map[Period]time.Duration{
	PeriodOneDay:      time.Hour * 24,
	PeriodFiveDays:    time.Hour * 24 * 5,
	PeriodOneMonth:    time.Hour * 24 * 30,
	PeriodThreeMonths: time.Hour * 24 * 91,
	PeriodSixMonths:   time.Hour * 24 * 182,
	PeriodOneYear:     time.Hour * 24 * 365,
	PeriodNinetyDays:  time.Hour * 24 * 90,
}

// PeriodToInterval is the bar size used when fetching a period.
var PeriodToInterval = map[Period]Interval{
	PeriodOneDay:      FiveMinutes,
	PeriodFiveDays:    FifteenMinutes,
	PeriodOneMonth:    Day,
	PeriodThreeMonths: Day,
	PeriodSixMonths:   Day,
	PeriodOneYear:     Day,
	PeriodNinetyDays:  Day,
}

func (p Period) Valid() bool {
	_, ok := PeriodToTime[p]
	return ok
}

// Frequency is how often the auto-trader evaluates a signal.
type Frequency string

const (
	FrequencyOneMinute      Frequency = "1m"
	FrequencyFiveMinutes    Frequency = "5m"
	FrequencyTenMinutes     Frequency = "10m"
	FrequencyFifteenMinutes Frequency = "15m"
	FrequencyThirtyMinutes  Frequency = "30m"
	FrequencyOneHour        Frequency = "1h"

	DefaultFrequency = FrequencyFiveMinutes
)

var FrequencyToTime = map[Frequency]time.Duration{
	FrequencyOneMinute:      time.Minute,
	FrequencyFiveMinutes:    time.Minute * 5,
	FrequencyTenMinutes:     time.Minute * 10,
	FrequencyFifteenMinutes: time.Minute * 15,
	FrequencyThirtyMinutes:  time.Minute * 30,
	FrequencyOneHour:        time.Hour,
}

var Frequencies = []Frequency{
	FrequencyOneMinute,
	FrequencyFiveMinutes,
	FrequencyTenMinutes,
	FrequencyFifteenMinutes,
	FrequencyThirtyMinutes,
	FrequencyOneHour,
}
