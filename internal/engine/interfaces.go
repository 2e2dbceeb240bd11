package engine

import (
	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/shopspring/decimal"
)

// recommender turns a price history into a BUY/SELL/HOLD signal.
type recommender interface {
	Recommend(candles []types.Candle) types.Signal
}

// trader is the part of Engine the auto-trade evaluator drives.
type trader interface {
	AutoBuy(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error)
	AutoSell(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error)
	Cash() decimal.Decimal
	BuyCost(quantity int64, price decimal.Decimal) (total, cost decimal.Decimal)
	Position(symbol string) (ledger.Position, bool)
}

type decisionRecorder interface {
	RecordDecision(d Decision) error
}
