package donchian

import (
	"fmt"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

const (
	DefaultLookback = 20
	atrPeriod       = 20
)

var atrStopMultiplier = decimal.NewFromInt(2)

// Recommender signals channel breakouts: BUY on a break of the highest
// high of the preceding lookback candles, SELL on a break of the lowest low
// or when price closes under the ATR stop of the last BUY.
type Recommender struct {
	lookback int
}

func NewRecommender(lookback int) *Recommender {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Recommender{lookback: lookback}
}

func (r *Recommender) Recommend(candles []types.Candle) types.Signal {
	if len(candles) < r.lookback+1 {
		return types.HoldSignal("", "insufficient data", time.Now())
	}

	// Walk forward so the stop from an earlier breakout is still known.
	var stopLoss decimal.Decimal
	var signal types.Signal
	for i := r.lookback; i < len(candles); i++ {
		candle := candles[i]
		highestHigh, lowestLow := donchianHighLow(candles[i-r.lookback : i])
		brokeUp := candle.High.GreaterThan(highestHigh)
		brokeDown := candle.Low.LessThan(lowestLow)

		switch {
		case brokeUp && brokeDown:
			signal = types.HoldSignal(candle.Ticker, "outside bar broke both sides of the channel", candle.Timestamp)
		case brokeUp:
			atr := calcATR(candles[:i+1], atrPeriod)
			if atr.IsPositive() {
				stopLoss = candle.Close.Sub(atr.Mul(atrStopMultiplier))
			}
			signal = types.NewSignal(candle.Ticker, types.SideTypeBuy, candle.Close,
				fmt.Sprintf("break of %d-bar high %s", r.lookback, highestHigh.StringFixed(2)),
				candle.Timestamp)
		case brokeDown:
			stopLoss = decimal.Zero
			signal = types.NewSignal(candle.Ticker, types.SideTypeSell, candle.Close,
				fmt.Sprintf("break of %d-bar low %s", r.lookback, lowestLow.StringFixed(2)),
				candle.Timestamp)
		case stopLoss.IsPositive() && candle.Close.LessThan(stopLoss):
			signal = types.NewSignal(candle.Ticker, types.SideTypeSell, candle.Close,
				fmt.Sprintf("ATR(%d) stop-loss at %s", atrPeriod, stopLoss.StringFixed(2)),
				candle.Timestamp)
			stopLoss = decimal.Zero
		default:
			signal = types.HoldSignal(candle.Ticker, "inside channel", candle.Timestamp)
		}
	}
	return signal
}

func donchianHighLow(candles []types.Candle) (decimal.Decimal, decimal.Decimal) {
	if len(candles) == 0 {
		return decimal.Zero, decimal.Zero
	}

	highest := candles[0].High
	lowest := candles[0].Low

	for _, c := range candles {
		if c.High.GreaterThan(highest) {
			highest = c.High
		}
		if c.Low.LessThan(lowest) {
			lowest = c.Low
		}
	}
	return highest, lowest
}

// calcATR is Wilder's average true range over period bars.
func calcATR(candles []types.Candle, period int) decimal.Decimal {
	if len(candles) < period+1 {
		return decimal.Zero
	}

	trueRanges := make([]decimal.Decimal, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		trueRanges = append(trueRanges, decimal.Max(
			high.Sub(low),
			high.Sub(prevClose).Abs(),
			low.Sub(prevClose).Abs(),
		))
	}

	p := decimal.NewFromInt(int64(period))
	atr := decimal.Sum(decimal.Zero, trueRanges[:period]...).Div(p)
	for _, tr := range trueRanges[period:] {
		atr = atr.Mul(p.Sub(decimal.NewFromInt(1))).Add(tr).Div(p)
	}
	return atr
}
