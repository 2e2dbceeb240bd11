package app

import (
	"time"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"

	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventTrade     EventKind = "trade"
	EventRejected  EventKind = "rejected"
	EventDecision  EventKind = "decision"
	EventPrice     EventKind = "price"
	EventAutoTrade EventKind = "autotrade"
	EventError     EventKind = "error"
)

// Event is pushed to the presentation layer whenever session state changes.
type Event struct {
	Kind        EventKind
	Time        time.Time
	Symbol      string
	Price       decimal.Decimal
	Transaction *ledger.Transaction
	Decision    *engine.Decision
	Message     string
	Err         error
}
