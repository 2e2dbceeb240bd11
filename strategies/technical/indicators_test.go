package technical

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decs(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestSMA(t *testing.T) {
	avg, ok := SMA(decs(1, 2, 3, 4, 5), 3)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(4).Equal(avg), "got %s", avg)

	_, ok = SMA(decs(1, 2), 3)
	assert.False(t, ok)

	_, ok = SMA(decs(1, 2), 0)
	assert.False(t, ok)
}

func TestEMASeries(t *testing.T) {
	// seed = SMA(1,2,3) = 2, multiplier = 0.5
	series := EMASeries(decs(1, 2, 3, 4, 6), 3)
	require.Len(t, series, 3)
	assert.True(t, decimal.NewFromInt(2).Equal(series[0]))
	assert.True(t, decimal.NewFromInt(3).Equal(series[1]))
	assert.True(t, decimal.NewFromFloat(4.5).Equal(series[2]))

	assert.Nil(t, EMASeries(decs(1), 3))
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		values []decimal.Decimal
		want   decimal.Decimal
	}{
		{"only gains", decs(1, 2, 3, 4, 5), decimal.NewFromInt(100)},
		{"only losses", decs(5, 4, 3, 2, 1), decimal.Zero},
		{"flat", decs(3, 3, 3, 3, 3), decimal.NewFromInt(50)},
		{"balanced", decs(1, 2, 1, 2, 1), decimal.NewFromInt(50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RSI(tt.values, 4)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	_, ok := RSI(decs(1, 2, 3), 4)
	assert.False(t, ok)
}

func TestMACD_LinearTrendConverges(t *testing.T) {
	values := make([]decimal.Decimal, 60)
	for i := range values {
		values[i] = decimal.NewFromInt(int64(100 + i))
	}
	line, signal, ok := MACD(values, 12, 26, 9)
	require.True(t, ok)
	// On a straight line both EMAs lag by (period-1)/2 bars: 12.5 - 5.5.
	assert.True(t, decimal.NewFromInt(7).Equal(line.Round(8)), "line %s", line)
	assert.True(t, line.Round(8).Equal(signal.Round(8)))
}

func TestMACD_NotEnoughData(t *testing.T) {
	_, _, ok := MACD(decs(1, 2, 3), 12, 26, 9)
	assert.False(t, ok)

	_, _, ok = MACD(decs(1, 2, 3), 26, 12, 9)
	assert.False(t, ok)
}
