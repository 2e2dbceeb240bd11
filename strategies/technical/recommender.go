package technical

import (
	"fmt"
	"strings"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

const (
	shortMAPeriod = 20
	longMAPeriod  = 50
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
)

var (
	rsiOversold   = decimal.NewFromInt(30)
	rsiOverbought = decimal.NewFromInt(70)
)

// Indicators toggles which indicators vote.
type Indicators struct {
	MA   bool
	RSI  bool
	MACD bool
}

func AllIndicators() Indicators {
	return Indicators{MA: true, RSI: true, MACD: true}
}

// Vote is one indicator's opinion.
type Vote struct {
	Indicator string
	Side      types.Side
	Detail    string
}

// Analysis is the full indicator breakdown behind a recommendation.
type Analysis struct {
	Close  decimal.Decimal
	Votes  []Vote
	Signal types.Signal
}

// Recommender turns daily candles into a BUY/SELL/HOLD label by majority
// vote of the enabled indicators.
type Recommender struct {
	indicators Indicators
}

func NewRecommender(indicators Indicators) *Recommender {
	return &Recommender{indicators: indicators}
}

func (r *Recommender) Recommend(candles []types.Candle) types.Signal {
	return r.Analyze(candles).Signal
}

func (r *Recommender) Analyze(candles []types.Candle) Analysis {
	if len(candles) == 0 {
		return Analysis{Signal: types.HoldSignal("", "no price history", time.Now())}
	}
	last := candles[len(candles)-1]
	closes := types.Closes(candles)

	var votes []Vote
	if r.indicators.MA {
		votes = append(votes, maVote(closes))
	}
	if r.indicators.RSI {
		votes = append(votes, rsiVote(closes))
	}
	if r.indicators.MACD {
		votes = append(votes, macdVote(closes))
	}

	buys, sells := 0, 0
	parts := make([]string, 0, len(votes))
	for _, v := range votes {
		switch v.Side {
		case types.SideTypeBuy:
			buys++
		case types.SideTypeSell:
			sells++
		}
		parts = append(parts, fmt.Sprintf("%s:%s", v.Indicator, v.Side))
	}

	side := types.SideTypeHold
	switch {
	case buys > sells:
		side = types.SideTypeBuy
	case sells > buys:
		side = types.SideTypeSell
	}
	reason := strings.Join(parts, " ")
	if reason == "" {
		reason = "no indicators enabled"
	}

	return Analysis{
		Close:  last.Close,
		Votes:  votes,
		Signal: types.NewSignal(last.Ticker, side, last.Close, reason, last.Timestamp),
	}
}

func maVote(closes []decimal.Decimal) Vote {
	v := Vote{Indicator: "MA", Side: types.SideTypeHold}
	short, ok1 := SMA(closes, shortMAPeriod)
	long, ok2 := SMA(closes, longMAPeriod)
	if !ok1 || !ok2 {
		v.Detail = "insufficient data"
		return v
	}
	last := closes[len(closes)-1]
	v.Detail = fmt.Sprintf("MA%d=%s MA%d=%s", shortMAPeriod, short.StringFixed(2), longMAPeriod, long.StringFixed(2))
	switch {
	case short.GreaterThan(long) && last.GreaterThan(short):
		v.Side = types.SideTypeBuy
	case short.LessThan(long) && last.LessThan(short):
		v.Side = types.SideTypeSell
	}
	return v
}

func rsiVote(closes []decimal.Decimal) Vote {
	v := Vote{Indicator: "RSI", Side: types.SideTypeHold}
	rsi, ok := RSI(closes, rsiPeriod)
	if !ok {
		v.Detail = "insufficient data"
		return v
	}
	v.Detail = fmt.Sprintf("RSI%d=%s", rsiPeriod, rsi.StringFixed(1))
	switch {
	case rsi.LessThan(rsiOversold):
		v.Side = types.SideTypeBuy
	case rsi.GreaterThan(rsiOverbought):
		v.Side = types.SideTypeSell
	}
	return v
}

func macdVote(closes []decimal.Decimal) Vote {
	v := Vote{Indicator: "MACD", Side: types.SideTypeHold}
	line, signal, ok := MACD(closes, macdFast, macdSlow, macdSignal)
	if !ok {
		v.Detail = "insufficient data"
		return v
	}
	v.Detail = fmt.Sprintf("MACD=%s signal=%s", line.StringFixed(3), signal.StringFixed(3))
	switch {
	case line.GreaterThan(signal):
		v.Side = types.SideTypeBuy
	case line.LessThan(signal):
		v.Side = types.SideTypeSell
	}
	return v
}
