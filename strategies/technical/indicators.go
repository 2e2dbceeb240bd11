package technical

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// SMA returns the simple moving average of the last period values.
func SMA(values []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(values) < period {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, v := range values[len(values)-period:] {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(period))), true
}

// EMASeries returns the exponential moving average for every index from
// period-1 onward, seeded with the SMA of the first period values.
func EMASeries(values []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(values) < period {
		return nil
	}
	multiplier := two.Div(decimal.NewFromInt(int64(period + 1)))
	keep := decimal.NewFromInt(1).Sub(multiplier)

	ema, _ := SMA(values[:period], period)
	out := make([]decimal.Decimal, 0, len(values)-period+1)
	out = append(out, ema)
	for _, v := range values[period:] {
		ema = v.Mul(multiplier).Add(ema.Mul(keep))
		out = append(out, ema)
	}
	return out
}

// RSI is the Wilder-smoothed relative strength index of the last value.
func RSI(values []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(values) < period+1 {
		return decimal.Zero, false
	}
	p := decimal.NewFromInt(int64(period))
	pMinus := decimal.NewFromInt(int64(period - 1))

	avgGain, avgLoss := decimal.Zero, decimal.Zero
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(values[i].Sub(values[i-1]))
		avgGain = avgGain.Add(gain)
		avgLoss = avgLoss.Add(loss)
	}
	avgGain = avgGain.Div(p)
	avgLoss = avgLoss.Div(p)

	for i := period + 1; i < len(values); i++ {
		gain, loss := splitChange(values[i].Sub(values[i-1]))
		avgGain = avgGain.Mul(pMinus).Add(gain).Div(p)
		avgLoss = avgLoss.Mul(pMinus).Add(loss).Div(p)
	}

	switch {
	case avgGain.IsZero() && avgLoss.IsZero():
		return decimal.NewFromInt(50), true
	case avgLoss.IsZero():
		return hundred, true
	}
	rs := avgGain.Div(avgLoss)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs))), true
}

func splitChange(change decimal.Decimal) (gain, loss decimal.Decimal) {
	if change.IsPositive() {
		return change, decimal.Zero
	}
	return decimal.Zero, change.Neg()
}

// MACD returns the last MACD line (fast EMA - slow EMA) and its signal EMA.
func MACD(values []decimal.Decimal, fast, slow, signal int) (decimal.Decimal, decimal.Decimal, bool) {
	if fast >= slow || len(values) < slow+signal-1 {
		return decimal.Zero, decimal.Zero, false
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)

	// fastEMA starts at index fast-1 and slowEMA at slow-1; align on slowEMA.
	offset := slow - fast
	line := make([]decimal.Decimal, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset].Sub(slowEMA[i])
	}
	signalEMA := EMASeries(line, signal)
	if len(signalEMA) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	return line[len(line)-1], signalEMA[len(signalEMA)-1], true
}
