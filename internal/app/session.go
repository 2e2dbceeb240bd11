// Package app runs a paper-trading session: one goroutine owns the engine
// and evaluator, and every mutation is a command processed in order.
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"
	"papertrader/internal/logger"
	"papertrader/internal/quotes"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrSessionClosed = errors.New("session closed")

const (
	DefaultRefreshInterval = time.Minute
	updatesBuffer          = 64
)

type Recommender interface {
	Recommend(candles []types.Candle) types.Signal
}

type DecisionRecorder interface {
	RecordDecision(d engine.Decision) error
}

type Config struct {
	RefreshInterval time.Duration
	// HistoryPeriod is the candle window fed to the recommender.
	HistoryPeriod types.Period
	Clock         func() time.Time
	Decisions     DecisionRecorder
}

type fetchKind int

const (
	fetchPrices fetchKind = iota
	fetchAutoTrade
)

// fetchResult carries the outcome of an off-loop fetch back into the loop.
type fetchResult struct {
	kind   fetchKind
	seq    uint64
	symbol string
	prices map[string]decimal.Decimal
	signal types.Signal
	price  decimal.Decimal
	err    error
}

type Session struct {
	engine      *engine.Engine
	evaluator   *engine.Evaluator
	quotes      quotes.Provider
	recommender Recommender
	logger      *zap.Logger

	clock           func() time.Time
	refreshInterval time.Duration
	historyPeriod   types.Period

	commands chan func(ctx context.Context)
	results  chan fetchResult
	updates  chan Event
	stopped  chan struct{}

	// Owned by the loop goroutine.
	prices     map[string]decimal.Decimal
	autoSymbol string
	autoTicker *time.Ticker
	seq        map[fetchKind]uint64
}

func NewSession(eng *engine.Engine, provider quotes.Provider, rec Recommender, cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.HistoryPeriod == "" {
		cfg.HistoryPeriod = types.PeriodNinetyDays
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	ev := engine.NewEvaluator(eng, log)
	if cfg.Decisions != nil {
		ev.SetJournal(cfg.Decisions)
	}

	return &Session{
		engine:          eng,
		evaluator:       ev,
		quotes:          provider,
		recommender:     rec,
		logger:          log,
		clock:           cfg.Clock,
		refreshInterval: cfg.RefreshInterval,
		historyPeriod:   cfg.HistoryPeriod,
		commands:        make(chan func(ctx context.Context)),
		results:         make(chan fetchResult),
		updates:         make(chan Event, updatesBuffer),
		stopped:         make(chan struct{}),
		prices:          make(map[string]decimal.Decimal),
		seq:             make(map[fetchKind]uint64),
	}
}

// Updates delivers session events. Events are dropped when the consumer
// falls more than a buffer behind.
func (s *Session) Updates() <-chan Event {
	return s.updates
}

// Run processes commands, ticks and fetch results until ctx is cancelled.
// It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)

	refresh := time.NewTicker(s.refreshInterval)
	defer refresh.Stop()
	defer s.stopAutoTicker()

	s.dispatchPriceRefresh(ctx)

	for {
		var autoC <-chan time.Time
		if s.autoTicker != nil {
			autoC = s.autoTicker.C
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return nil
		case cmd := <-s.commands:
			cmd(ctx)
		case <-refresh.C:
			s.dispatchPriceRefresh(ctx)
		case <-autoC:
			s.dispatchAutoTrade(ctx)
		case r := <-s.results:
			s.handleResult(r)
		}
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	cmd := func(loopCtx context.Context) {
		defer close(done)
		fn(loopCtx)
	}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrSessionClosed
	}
	<-done
	return nil
}

func (s *Session) Buy(ctx context.Context, symbol string, quantity int64) (ledger.Transaction, error) {
	return s.trade(ctx, ledger.KindBuy, symbol, quantity)
}

func (s *Session) Sell(ctx context.Context, symbol string, quantity int64) (ledger.Transaction, error) {
	return s.trade(ctx, ledger.KindSell, symbol, quantity)
}

// trade fetches the quote on the caller's goroutine, then executes on the loop.
func (s *Session) trade(ctx context.Context, kind ledger.Kind, symbol string, quantity int64) (tx ledger.Transaction, err error) {
	symbol, err = engine.NormalizeSymbol(symbol)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if quantity <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: got %d", engine.ErrInvalidQuantity, quantity)
	}

	ctx, span := logger.StartSpan(ctx, "session.trade",
		attribute.String("symbol", symbol),
		attribute.String("kind", string(kind)),
		attribute.Int64("quantity", quantity))
	defer func() { logger.EndSpan(span, err) }()

	price, err := s.quotes.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var tradeErr error
	err = s.do(ctx, func(context.Context) {
		s.prices[symbol] = price
		if kind == ledger.KindBuy {
			tx, tradeErr = s.engine.Buy(symbol, quantity, price)
		} else {
			tx, tradeErr = s.engine.Sell(symbol, quantity, price)
		}
		if tradeErr != nil {
			s.emit(Event{Kind: EventRejected, Symbol: symbol, Price: price, Err: tradeErr, Message: tradeErr.Error()})
			return
		}
		s.emit(Event{Kind: EventTrade, Symbol: symbol, Price: price, Transaction: &tx})
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	return tx, tradeErr
}

func (s *Session) Snapshot(ctx context.Context) (types.LedgerView, error) {
	var view types.LedgerView
	err := s.do(ctx, func(context.Context) { view = s.engine.Snapshot() })
	return view, err
}

func (s *Session) History(ctx context.Context) ([]ledger.Transaction, error) {
	var history []ledger.Transaction
	err := s.do(ctx, func(context.Context) { history = s.engine.History() })
	return history, err
}

// Prices returns the latest refreshed price per symbol.
func (s *Session) Prices(ctx context.Context) (map[string]decimal.Decimal, error) {
	var prices map[string]decimal.Decimal
	err := s.do(ctx, func(context.Context) { prices = maps.Clone(s.prices) })
	return prices, err
}

func (s *Session) Reset(ctx context.Context) error {
	var resetErr error
	err := s.do(ctx, func(context.Context) { resetErr = s.engine.Reset() })
	if err != nil {
		return err
	}
	return resetErr
}

// EnableAutoTrade validates cfg and starts evaluating symbol at cfg's
// frequency. Re-enabling replaces the symbol and config.
func (s *Session) EnableAutoTrade(ctx context.Context, symbol string, cfg engine.AutoTradeConfig) error {
	symbol, err := engine.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	var enableErr error
	err = s.do(ctx, func(context.Context) {
		if enableErr = s.evaluator.Enable(cfg, s.clock()); enableErr != nil {
			return
		}
		s.autoSymbol = symbol
		s.stopAutoTicker()
		s.autoTicker = time.NewTicker(s.evaluator.Config().CheckInterval())
		s.emit(Event{Kind: EventAutoTrade, Symbol: symbol, Message: "auto-trade enabled"})
	})
	if err != nil {
		return err
	}
	return enableErr
}

// DisableAutoTrade stops the ticker. A fetch already in flight is discarded
// when it returns.
func (s *Session) DisableAutoTrade(ctx context.Context) error {
	return s.do(ctx, func(context.Context) {
		s.evaluator.Disable()
		s.stopAutoTicker()
		s.seq[fetchAutoTrade]++
		s.emit(Event{Kind: EventAutoTrade, Symbol: s.autoSymbol, Message: "auto-trade disabled"})
	})
}

type AutoTradeStatus struct {
	State         engine.AutoTradeState
	Symbol        string
	Config        engine.AutoTradeConfig
	Counters      engine.DailyTradeCounters
	LastTradeTime time.Time
}

func (s *Session) AutoTradeStatus(ctx context.Context) (AutoTradeStatus, error) {
	var st AutoTradeStatus
	err := s.do(ctx, func(context.Context) {
		st = AutoTradeStatus{
			State:         s.evaluator.State(),
			Symbol:        s.autoSymbol,
			Config:        s.evaluator.Config(),
			Counters:      s.evaluator.Counters(),
			LastTradeTime: s.evaluator.LastTradeTime(),
		}
	})
	return st, err
}

// EvaluateNow dispatches an auto-trade evaluation without waiting for the
// next tick.
func (s *Session) EvaluateNow(ctx context.Context) error {
	return s.do(ctx, s.dispatchAutoTrade)
}

// RefreshNow dispatches a price refresh without waiting for the next tick.
func (s *Session) RefreshNow(ctx context.Context) error {
	return s.do(ctx, s.dispatchPriceRefresh)
}

func (s *Session) stopAutoTicker() {
	if s.autoTicker != nil {
		s.autoTicker.Stop()
		s.autoTicker = nil
	}
}

func (s *Session) emit(e Event) {
	if e.Time.IsZero() {
		e.Time = s.clock()
	}
	select {
	case s.updates <- e:
	default:
		s.logger.Debug("update dropped", zap.String("kind", string(e.Kind)))
	}
}
