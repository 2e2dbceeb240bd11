package engine

import (
	"errors"
	"io"
	"os"
	"time"

	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNotEnoughCandles = errors.New("not enough candles to replay")

// ReplayResult is the outcome of running the auto-trader over history.
type ReplayResult struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Final     types.LedgerView
	LastPrice decimal.Decimal
	History   []ledger.Transaction
	Decisions []Decision
	Snapshots []EquityPoint
}

// EquityPoint is the marked-to-market ledger value at one bar.
type EquityPoint struct {
	Time   time.Time
	Equity decimal.Decimal
}

type replayer struct {
	symbol    string
	candles   []types.Candle
	strategy  recommender
	config    *ReplayConfig
	engine    *Engine
	evaluator *Evaluator
	curTime   time.Time
}

// Replay runs the auto-trade evaluator bar by bar over candles against a
// fresh in-memory ledger. Each bar's recommendation only sees candles up to
// and including that bar, and trades execute at the bar close.
func Replay(symbol string, candles []types.Candle, strat recommender, config *ReplayConfig, logger *zap.Logger) (*ReplayResult, error) {
	if len(candles) <= config.warmup {
		return nil, ErrNotEnoughCandles
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &replayer{
		symbol:   symbol,
		candles:  candles,
		strategy: strat,
		config:   config,
		curTime:  candles[0].Timestamp,
	}
	store := ledger.NewMemoryStore(config.initialCash)
	r.engine = NewEngine(store, NewPortfolioConfig(config.fee, r.getCurrentTime), logger)
	r.evaluator = NewEvaluator(r.engine, logger)
	if err := r.evaluator.Enable(config.autoTrade, r.curTime); err != nil {
		return nil, err
	}
	return r.run(), nil
}

func (r *replayer) getCurrentTime() time.Time {
	return r.curTime
}

func (r *replayer) run() *ReplayResult {
	out := io.Discard
	if r.config.showProgress {
		out = os.Stderr
	}
	bar := initProgressBar(len(r.candles), out)

	result := &ReplayResult{
		Symbol: r.symbol,
		Start:  r.candles[0].Timestamp,
		End:    r.candles[len(r.candles)-1].Timestamp,
	}
	for i, candle := range r.candles {
		r.curTime = candle.Timestamp
		if i >= r.config.warmup {
			signal := r.strategy.Recommend(r.candles[:i+1])
			d := r.evaluator.Evaluate(r.curTime, r.symbol, signal.Side, candle.Close)
			if d.Action != ActionSkip {
				result.Decisions = append(result.Decisions, d)
			}
		}
		result.Snapshots = append(result.Snapshots, EquityPoint{
			Time:   r.curTime,
			Equity: markToMarket(r.engine.Snapshot(), map[string]decimal.Decimal{r.symbol: candle.Close}),
		})
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	result.Final = r.engine.Snapshot()
	result.History = r.engine.History()
	result.LastPrice = r.candles[len(r.candles)-1].Close
	return result
}

func markToMarket(view types.LedgerView, prices map[string]decimal.Decimal) decimal.Decimal {
	equity := view.Cash
	for sym, pos := range view.Positions {
		price, ok := prices[sym]
		if !ok {
			price = pos.AvgPrice
		}
		equity = equity.Add(price.Mul(decimal.NewFromInt(pos.Shares)))
	}
	return equity
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying signals..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
