package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal is a recommendation for a symbol, computed at CreatedAt from
// candles whose last close was Price.
type Signal struct {
	Symbol    string
	Side      Side
	Price     decimal.Decimal
	Reason    string
	CreatedAt time.Time
}

func NewSignal(
	ticker string,
	side Side,
	price decimal.Decimal,
	reason string,
	createdAt time.Time,
) Signal {
	return Signal{
		Symbol:    ticker,
		Side:      side,
		Price:     price,
		Reason:    reason,
		CreatedAt: createdAt,
	}
}

func HoldSignal(ticker string, reason string, createdAt time.Time) Signal {
	return NewSignal(ticker, SideTypeHold, decimal.Zero, reason, createdAt)
}
