package cli

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatUSD renders an amount as US dollars rounded to the cent, e.g.
// $1,234.50 or -$3.10.
func formatUSD(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}

// formatSignedUSD prefixes gains with "+". Zero is shown unsigned.
func formatSignedUSD(d decimal.Decimal) string {
	s := formatUSD(d)
	if d.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

func formatShares(n int64) string {
	if n == 1 {
		return "1 share"
	}
	return fmt.Sprintf("%d shares", n)
}
