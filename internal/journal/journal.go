// Package journal keeps an append-only SQLite audit trail of executed trades
// and auto-trade decisions. The JSON ledger stays the source of truth; the
// journal is never read back into it.
package journal

import (
	"time"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/shopspring/decimal"
)

type TradeRecord struct {
	TradeID     string
	Transaction ledger.Transaction
}

type DecisionRecord struct {
	DecisionID string
	Time       time.Time
	Symbol     string
	Signal     types.Side
	Action     engine.Action
	Reason     string
	// Shares and Price are set only when the decision executed a trade.
	Shares *int64
	Price  *decimal.Decimal
}

func newDecisionRecord(decisionID string, d engine.Decision) DecisionRecord {
	rec := DecisionRecord{
		DecisionID: decisionID,
		Time:       d.Time,
		Symbol:     d.Symbol,
		Signal:     d.Signal,
		Action:     d.Action,
		Reason:     d.Reason,
	}
	if d.Transaction != nil {
		shares := d.Transaction.Shares
		price := d.Transaction.Price
		rec.Shares = &shares
		rec.Price = &price
	}
	return rec
}
