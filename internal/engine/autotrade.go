package engine

import (
	"fmt"
	"time"

	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CounterWindow is how long daily trade counters accumulate before reset.
const CounterWindow = 24 * time.Hour

type AutoTradeState int

const (
	AutoTradeDisabled AutoTradeState = iota
	AutoTradeEnabled
)

func (s AutoTradeState) String() string {
	if s == AutoTradeEnabled {
		return "ENABLED"
	}
	return "DISABLED"
}

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionSkip Action = "SKIP"
)

// Decision is the outcome of one evaluation tick.
type Decision struct {
	Time        time.Time
	Symbol      string
	Signal      types.Side
	Action      Action
	Reason      string
	Transaction *ledger.Transaction
}

type DailyTradeCounters struct {
	BuyCount    int
	SellCount   int
	WindowStart time.Time
}

// Validate reports the first invalid field, wrapped in ErrInvalidAutoTradeConfig.
func (c AutoTradeConfig) Validate() error {
	if c.QuantityPerTrade <= 0 {
		return fmt.Errorf("%w: quantity per trade must be greater than 0", ErrInvalidAutoTradeConfig)
	}
	if !c.MaxInvestmentPerTrade.IsPositive() {
		return fmt.Errorf("%w: max investment per trade must be greater than 0", ErrInvalidAutoTradeConfig)
	}
	if _, ok := types.FrequencyToTime[c.Frequency]; !ok {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidAutoTradeConfig, c.Frequency)
	}
	if c.DailyBuyLimit < 0 || c.DailySellLimit < 0 {
		return fmt.Errorf("%w: daily limits cannot be negative", ErrInvalidAutoTradeConfig)
	}
	return nil
}

// Evaluator maps recommendation signals to auto-trades, bounded by daily
// counters and the per-trade investment cap.
type Evaluator struct {
	trader        trader
	decisions     decisionRecorder
	logger        *zap.Logger
	state         AutoTradeState
	config        AutoTradeConfig
	counters      DailyTradeCounters
	lastTradeTime time.Time
}

func NewEvaluator(t trader, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{trader: t, logger: logger}
}

// SetJournal attaches a best-effort audit trail for decisions.
func (e *Evaluator) SetJournal(d decisionRecorder) {
	e.decisions = d
}

// Enable moves DISABLED -> ENABLED. The daily limits are taken as given; a
// limit of 0 blocks that side. Counters survive a disable/enable cycle
// within the same window.
func (e *Evaluator) Enable(config AutoTradeConfig, now time.Time) error {
	if err := config.Validate(); err != nil {
		return err
	}
	e.config = config
	e.state = AutoTradeEnabled
	if e.counters.WindowStart.IsZero() {
		e.counters.WindowStart = now
	}
	e.logger.Info("auto-trade enabled",
		zap.Int64("quantity", config.QuantityPerTrade),
		zap.String("max_investment", config.MaxInvestmentPerTrade.StringFixed(cashPlaces)),
		zap.String("frequency", string(config.Frequency)))
	return nil
}

func (e *Evaluator) Disable() {
	if e.state == AutoTradeDisabled {
		return
	}
	e.state = AutoTradeDisabled
	e.logger.Info("auto-trade disabled")
}

func (e *Evaluator) State() AutoTradeState { return e.state }

func (e *Evaluator) Config() AutoTradeConfig { return e.config }

func (e *Evaluator) Counters() DailyTradeCounters { return e.counters }

func (e *Evaluator) LastTradeTime() time.Time { return e.lastTradeTime }

// Evaluate runs one tick. Rejections are returned as SKIP decisions, never
// as errors.
func (e *Evaluator) Evaluate(now time.Time, symbol string, signal types.Side, price decimal.Decimal) Decision {
	if s, err := NormalizeSymbol(symbol); err == nil {
		symbol = s
	}
	d := e.evaluate(now, symbol, signal, price)
	if d.Action == ActionSkip {
		e.logger.Info("auto-trade skipped",
			zap.String("symbol", symbol),
			zap.String("signal", string(signal)),
			zap.String("reason", d.Reason))
	}
	if e.decisions != nil {
		if err := e.decisions.RecordDecision(d); err != nil {
			e.logger.Warn("journal decision failed", zap.Error(err))
		}
	}
	return d
}

func (e *Evaluator) evaluate(now time.Time, symbol string, signal types.Side, price decimal.Decimal) Decision {
	d := Decision{Time: now, Symbol: symbol, Signal: signal, Action: ActionSkip}

	if e.state != AutoTradeEnabled {
		d.Reason = "auto-trade is disabled"
		return d
	}
	e.rollWindow(now)

	if !price.IsPositive() {
		d.Reason = "no current price"
		return d
	}

	switch signal {
	case types.SideTypeBuy:
		return e.evaluateBuy(d, now, price)
	case types.SideTypeSell:
		return e.evaluateSell(d, now, price)
	default:
		d.Reason = "no buy or sell recommendation"
		return d
	}
}

func (e *Evaluator) rollWindow(now time.Time) {
	if now.Sub(e.counters.WindowStart) >= CounterWindow {
		e.counters = DailyTradeCounters{WindowStart: now}
	}
}

func (e *Evaluator) evaluateBuy(d Decision, now time.Time, price decimal.Decimal) Decision {
	qty := e.config.QuantityPerTrade
	total, cost := e.trader.BuyCost(qty, price)

	if cost.GreaterThan(e.trader.Cash()) {
		d.Reason = fmt.Sprintf("insufficient funds: %d shares cost %s", qty, cost.String())
		return d
	}
	if total.GreaterThan(e.config.MaxInvestmentPerTrade) {
		d.Reason = fmt.Sprintf("cost %s exceeds max investment %s", total.String(), e.config.MaxInvestmentPerTrade.StringFixed(cashPlaces))
		return d
	}
	if e.counters.BuyCount >= e.config.DailyBuyLimit {
		d.Reason = fmt.Sprintf("daily buy limit of %d reached", e.config.DailyBuyLimit)
		return d
	}

	tx, err := e.trader.AutoBuy(d.Symbol, qty, price)
	if err != nil {
		d.Reason = err.Error()
		return d
	}
	e.counters.BuyCount++
	e.lastTradeTime = now
	d.Action = ActionBuy
	d.Reason = fmt.Sprintf("bought %d shares of %s for %s", tx.Shares, tx.Symbol, tx.Total.StringFixed(cashPlaces))
	d.Transaction = &tx
	return d
}

// evaluateSell is not bounded by MaxInvestmentPerTrade; only buys are.
func (e *Evaluator) evaluateSell(d Decision, now time.Time, price decimal.Decimal) Decision {
	pos, ok := e.trader.Position(d.Symbol)
	if !ok {
		d.Reason = fmt.Sprintf("no shares of %s to sell", d.Symbol)
		return d
	}
	qty := min(e.config.QuantityPerTrade, pos.Shares)
	if qty <= 0 {
		d.Reason = "nothing to sell"
		return d
	}
	if e.counters.SellCount >= e.config.DailySellLimit {
		d.Reason = fmt.Sprintf("daily sell limit of %d reached", e.config.DailySellLimit)
		return d
	}

	tx, err := e.trader.AutoSell(d.Symbol, qty, price)
	if err != nil {
		d.Reason = err.Error()
		return d
	}
	e.counters.SellCount++
	e.lastTradeTime = now
	d.Action = ActionSell
	d.Reason = fmt.Sprintf("sold %d shares of %s for %s", tx.Shares, tx.Symbol, tx.Total.StringFixed(cashPlaces))
	d.Transaction = &tx
	return d
}
