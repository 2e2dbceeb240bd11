package engine

import (
	"fmt"
	"time"

	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type tradeRecorder interface {
	RecordTrade(tx ledger.Transaction) error
}

// Engine owns the ledger and is the only code allowed to mutate it. It is
// not safe for concurrent use; callers serialize access (see app.Session).
type Engine struct {
	store   ledger.Store
	ledger  *ledger.Ledger
	fee     FeeFunc
	clock   func() time.Time
	journal tradeRecorder
	logger  *zap.Logger
}

func NewEngine(store ledger.Store, config *PortfolioConfig, logger *zap.Logger) *Engine {
	if config == nil {
		config = NewPortfolioConfig(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		ledger: store.Load(),
		fee:    config.fee,
		clock:  config.clock,
		logger: logger,
	}
}

// SetJournal attaches a best-effort audit trail for executed trades.
func (e *Engine) SetJournal(j tradeRecorder) {
	e.journal = j
}

func (e *Engine) Buy(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error) {
	return e.execute(ledger.KindBuy, symbol, quantity, price)
}

func (e *Engine) Sell(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error) {
	return e.execute(ledger.KindSell, symbol, quantity, price)
}

func (e *Engine) AutoBuy(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error) {
	return e.execute(ledger.KindAutoBuy, symbol, quantity, price)
}

func (e *Engine) AutoSell(symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error) {
	return e.execute(ledger.KindAutoSell, symbol, quantity, price)
}

func (e *Engine) execute(kind ledger.Kind, symbol string, quantity int64, price decimal.Decimal) (ledger.Transaction, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if quantity <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return ledger.Transaction{}, fmt.Errorf("%w: got %s", ErrInvalidPrice, price)
	}

	next := e.ledger.Clone()
	var tx ledger.Transaction
	if kind.IsBuy() {
		tx, err = applyBuy(next, kind, symbol, quantity, price, e.fee, e.clock())
	} else {
		tx, err = applySell(next, kind, symbol, quantity, price, e.fee, e.clock())
	}
	if err != nil {
		return ledger.Transaction{}, err
	}

	if err := e.store.Save(next); err != nil {
		e.logger.Error("trade not committed",
			zap.String("symbol", symbol),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return ledger.Transaction{}, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	e.ledger = next

	e.logger.Info("trade executed",
		zap.String("symbol", tx.Symbol),
		zap.String("kind", string(tx.Kind)),
		zap.Int64("shares", tx.Shares),
		zap.String("price", tx.Price.String()),
		zap.String("total", tx.Total.StringFixed(cashPlaces)))

	if e.journal != nil {
		if err := e.journal.RecordTrade(tx); err != nil {
			e.logger.Warn("journal trade failed", zap.Error(err))
		}
	}
	return tx, nil
}

// Snapshot returns a read-only view of the current ledger.
func (e *Engine) Snapshot() types.LedgerView {
	return e.ledger.View(e.clock())
}

// History returns a copy of the transaction history in chronological order.
func (e *Engine) History() []ledger.Transaction {
	return e.ledger.Clone().History
}

func (e *Engine) Cash() decimal.Decimal {
	return e.ledger.Cash
}

// Position looks up a holding. The symbol is normalized the same way trades
// normalize it.
func (e *Engine) Position(symbol string) (ledger.Position, bool) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return ledger.Position{}, false
	}
	pos, ok := e.ledger.Positions[symbol]
	return pos, ok
}

// BuyCost returns the trade value of quantity shares at price and the exact
// cash a buy of them needs, commission included.
func (e *Engine) BuyCost(quantity int64, price decimal.Decimal) (total, cost decimal.Decimal) {
	total, _, cost = buyCost(quantity, price, e.fee)
	return total, cost
}

// Reset replaces the ledger with a fresh one. The in-memory ledger is only
// swapped after the store has persisted it.
func (e *Engine) Reset() error {
	l, err := e.store.Reset()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	e.ledger = l
	e.logger.Info("ledger reset", zap.String("cash", l.Cash.StringFixed(cashPlaces)))
	return nil
}
