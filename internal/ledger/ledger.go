package ledger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

// DefaultInitialBalance is the cash a fresh ledger starts with.
var DefaultInitialBalance = decimal.RequireFromString("100000.00")

var ErrMalformedLedger = errors.New("malformed ledger")

// Kind tags a transaction with who initiated it and in which direction.
type Kind string

const (
	KindBuy      Kind = "BUY"
	KindSell     Kind = "SELL"
	KindAutoBuy  Kind = "AUTO BUY"
	KindAutoSell Kind = "AUTO SELL"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBuy, KindSell, KindAutoBuy, KindAutoSell:
		return true
	}
	return false
}

func (k Kind) IsBuy() bool { return k == KindBuy || k == KindAutoBuy }

func (k Kind) IsAuto() bool { return k == KindAutoBuy || k == KindAutoSell }

// Side maps the kind onto a plain BUY/SELL side.
func (k Kind) Side() types.Side {
	if k.IsBuy() {
		return types.SideTypeBuy
	}
	return types.SideTypeSell
}

type Position struct {
	Shares   int64
	AvgPrice decimal.Decimal
}

// Transaction is an executed trade. Transactions are never modified once
// appended to a ledger.
type Transaction struct {
	Date       time.Time
	Kind       Kind
	Symbol     string
	Shares     int64
	Price      decimal.Decimal
	Total      decimal.Decimal
	Commission decimal.Decimal
}

// Ledger is the whole persisted paper-trading state.
type Ledger struct {
	Cash      decimal.Decimal
	Positions map[string]Position
	History   []Transaction
}

func New(initialCash decimal.Decimal) *Ledger {
	return &Ledger{
		Cash:      initialCash,
		Positions: make(map[string]Position),
	}
}

// Clone returns a deep copy that can be mutated without touching l.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Cash:      l.Cash,
		Positions: maps.Clone(l.Positions),
		History:   slices.Clone(l.History),
	}
	if c.Positions == nil {
		c.Positions = make(map[string]Position)
	}
	return c
}

// Validate checks the invariants a loaded ledger must satisfy.
func (l *Ledger) Validate() error {
	if l.Cash.IsNegative() {
		return fmt.Errorf("%w: negative cash balance %s", ErrMalformedLedger, l.Cash)
	}
	for sym, pos := range l.Positions {
		if sym == "" {
			return fmt.Errorf("%w: position with empty symbol", ErrMalformedLedger)
		}
		if pos.Shares <= 0 {
			return fmt.Errorf("%w: position %s has %d shares", ErrMalformedLedger, sym, pos.Shares)
		}
		if pos.AvgPrice.IsNegative() {
			return fmt.Errorf("%w: position %s has negative average price", ErrMalformedLedger, sym)
		}
	}
	for i, tx := range l.History {
		if !tx.Kind.Valid() {
			return fmt.Errorf("%w: transaction %d has unknown type %q", ErrMalformedLedger, i, tx.Kind)
		}
		if tx.Shares <= 0 {
			return fmt.Errorf("%w: transaction %d has %d shares", ErrMalformedLedger, i, tx.Shares)
		}
		if tx.Price.IsNegative() || tx.Total.IsNegative() || tx.Commission.IsNegative() {
			return fmt.Errorf("%w: transaction %d has a negative amount", ErrMalformedLedger, i)
		}
	}
	return nil
}

func (l *Ledger) View(curTime time.Time) types.LedgerView {
	view := types.LedgerView{
		Cash:      l.Cash,
		Positions: make(map[string]types.PositionSnapshot, len(l.Positions)),
		Time:      curTime,
	}
	for sym, pos := range l.Positions {
		view.Positions[sym] = types.PositionSnapshot{
			Symbol:   sym,
			Shares:   pos.Shares,
			AvgPrice: pos.AvgPrice,
		}
	}
	return view
}

// Symbols returns held symbols in sorted order.
func (l *Ledger) Symbols() []string {
	return slices.Sorted(maps.Keys(l.Positions))
}
