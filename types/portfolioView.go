package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerView is a read-only snapshot of the ledger handed to presentation code.
type LedgerView struct {
	Cash      decimal.Decimal
	Positions map[string]PositionSnapshot
	Time      time.Time
}

type PositionSnapshot struct {
	Symbol   string
	Shares   int64
	AvgPrice decimal.Decimal
}

// CostBasis is shares times average price.
func (p PositionSnapshot) CostBasis() decimal.Decimal {
	return p.AvgPrice.Mul(decimal.NewFromInt(p.Shares))
}
