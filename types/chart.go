package types

import (
	"time"
)

// Chart is a price history for one ticker over a Period.
type Chart struct {
	Ticker   string    `json:"ticker"`
	Period   Period    `json:"period"`
	Candles  []Candle  `json:"candles"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Interval Interval  `json:"interval"`
}

func NewChart(ticker string, period Period, candles []Candle) Chart {
	c := Chart{
		Ticker:   ticker,
		Period:   period,
		Candles:  candles,
		Interval: PeriodToInterval[period],
	}
	if len(candles) > 0 {
		c.Start = candles[0].Timestamp
		c.End = candles[len(candles)-1].Timestamp
	}
	return c
}

func (c Chart) Last() (Candle, bool) {
	if len(c.Candles) == 0 {
		return Candle{}, false
	}
	return c.Candles[len(c.Candles)-1], true
}
