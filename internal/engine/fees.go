package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeeFunc computes the commission charged for a trade of the given value.
type FeeFunc func(tradeValue decimal.Decimal) decimal.Decimal

// NoCommission is the default fee schedule.
func NoCommission(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// IBKRNetherlands computes the commission for USD-denominated Netherlands
// stocks using IBKR "Fixed - IB SmartRouting" pricing. It is opt-in and only
// illustrates a non-zero schedule; trades are commission-free by default.
//
// Schedule (per IBKR, Netherlands, USD):
//   - 0.05% of trade value
//   - Minimum per order: USD 1.70
//   - Maximum per order: USD 39.00
func IBKRNetherlands(tradeValue decimal.Decimal) decimal.Decimal {
	if tradeValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	rate := decimal.RequireFromString("0.0005")
	fee := tradeValue.Mul(rate)

	minFee := decimal.RequireFromString("1.70")
	maxFee := decimal.RequireFromString("39")

	if fee.LessThan(minFee) {
		fee = minFee
	}
	if fee.GreaterThan(maxFee) {
		fee = maxFee
	}
	return fee
}

var feeSchedules = map[string]FeeFunc{
	"none":    NoCommission,
	"ibkr-nl": IBKRNetherlands,
}

// FeeSchedule looks up a fee function by its config name.
func FeeSchedule(name string) (FeeFunc, error) {
	if name == "" {
		return NoCommission, nil
	}
	fee, ok := feeSchedules[name]
	if !ok {
		return nil, fmt.Errorf("unknown commission schedule %q", name)
	}
	return fee, nil
}
