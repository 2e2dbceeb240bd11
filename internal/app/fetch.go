package app

import (
	"context"
	"maps"
	"slices"

	"papertrader/internal/logger"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// watchedSymbols are the symbols whose prices the refresh ticker keeps
// current: every held position plus the auto-trade symbol.
func (s *Session) watchedSymbols() []string {
	symbols := slices.Collect(maps.Keys(s.engine.Snapshot().Positions))
	if s.autoSymbol != "" && !slices.Contains(symbols, s.autoSymbol) {
		symbols = append(symbols, s.autoSymbol)
	}
	slices.Sort(symbols)
	return symbols
}

func (s *Session) nextSeq(kind fetchKind) uint64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *Session) dispatchPriceRefresh(ctx context.Context) {
	symbols := s.watchedSymbols()
	if len(symbols) == 0 {
		return
	}
	seq := s.nextSeq(fetchPrices)

	go func() {
		ctx, span := logger.StartSpan(ctx, "session.refresh_prices",
			attribute.StringSlice("symbols", symbols))
		prices := make(map[string]decimal.Decimal, len(symbols))
		var firstErr error
		for _, sym := range symbols {
			price, err := s.quotes.GetCurrentPrice(ctx, sym)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			prices[sym] = price
		}
		logger.EndSpan(span, firstErr)
		s.deliver(ctx, fetchResult{kind: fetchPrices, seq: seq, prices: prices, err: firstErr})
	}()
}

func (s *Session) dispatchAutoTrade(ctx context.Context) {
	symbol := s.autoSymbol
	if symbol == "" {
		return
	}
	seq := s.nextSeq(fetchAutoTrade)

	go func() {
		r := fetchResult{kind: fetchAutoTrade, seq: seq, symbol: symbol}
		ctx, span := logger.StartSpan(ctx, "session.autotrade_fetch", attribute.String("symbol", symbol))

		r.price, r.err = s.quotes.GetCurrentPrice(ctx, symbol)
		if r.err == nil {
			var candles []types.Candle
			candles, r.err = s.quotes.GetHistory(ctx, symbol, s.historyPeriod)
			if r.err == nil {
				r.signal = s.recommender.Recommend(candles)
			}
		}
		logger.EndSpan(span, r.err)
		s.deliver(ctx, r)
	}()
}

func (s *Session) deliver(ctx context.Context, r fetchResult) {
	select {
	case s.results <- r:
	case <-ctx.Done():
	case <-s.stopped:
	}
}

func (s *Session) handleResult(r fetchResult) {
	if r.seq != s.seq[r.kind] {
		s.logger.Debug("superseded fetch result dropped", zap.Uint64("seq", r.seq), zap.String("symbol", r.symbol))
		return
	}

	switch r.kind {
	case fetchPrices:
		for sym, price := range r.prices {
			s.prices[sym] = price
			s.emit(Event{Kind: EventPrice, Symbol: sym, Price: price})
		}
		if r.err != nil {
			s.logger.Warn("price refresh failed", zap.Error(r.err))
			s.emit(Event{Kind: EventError, Err: r.err, Message: r.err.Error()})
		}

	case fetchAutoTrade:
		if r.symbol != s.autoSymbol || s.autoTicker == nil {
			return
		}
		if r.err != nil {
			s.logger.Warn("auto-trade tick skipped", zap.String("symbol", r.symbol), zap.Error(r.err))
			s.emit(Event{Kind: EventError, Symbol: r.symbol, Err: r.err, Message: r.err.Error()})
			return
		}
		s.prices[r.symbol] = r.price
		d := s.evaluator.Evaluate(s.clock(), r.symbol, r.signal.Side, r.price)
		s.emit(Event{
			Kind:        EventDecision,
			Symbol:      r.symbol,
			Price:       r.price,
			Decision:    &d,
			Transaction: d.Transaction,
			Message:     d.Reason,
		})
	}
}
