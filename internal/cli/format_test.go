package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"100000.00", "$100,000.00"},
		{"-3.1", "-$3.10"},
		{"0.005", "$0.01"},
		{"150.123456", "$150.12"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUSD(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatSignedUSD(t *testing.T) {
	assert.Equal(t, "+$12.00", formatSignedUSD(decimal.NewFromInt(12)))
	assert.Equal(t, "-$12.00", formatSignedUSD(decimal.NewFromInt(-12)))
	assert.Equal(t, "$0.00", formatSignedUSD(decimal.RequireFromString("0.001")))
}

func TestFormatShares(t *testing.T) {
	assert.Equal(t, "1 share", formatShares(1))
	assert.Equal(t, "25 shares", formatShares(25))
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount(" $2,500.50 ")
	assert.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2500.50").Equal(d))

	_, err = parseAmount("0")
	assert.Error(t, err)
	_, err = parseAmount("lots")
	assert.Error(t, err)
}
