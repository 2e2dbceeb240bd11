package engine

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/shopspring/decimal"
)

type PositionReport struct {
	Symbol    string
	Shares    int64
	AvgPrice  decimal.Decimal
	LastPrice decimal.Decimal
	Value     decimal.Decimal
	GainLoss  decimal.Decimal
	// Stale is set when no live price was available and LastPrice falls
	// back to the average price.
	Stale bool
}

type Report struct {
	Time        time.Time
	TotalTrades int

	Cash          decimal.Decimal
	MarketValue   decimal.Decimal
	Equity        decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	TotalFees     decimal.Decimal

	Positions []PositionReport

	// Filled for replays only.
	MaxDrawdown          decimal.Decimal
	MaxDrawdownPercent   decimal.Decimal
	MaxDrawdownDays      time.Duration
	MaxConsecutiveLosses int
}

// BuildReport values the ledger at the given prices and derives realized
// P&L from the history using the average-cost method.
func BuildReport(view types.LedgerView, history []ledger.Transaction, prices map[string]decimal.Decimal) *Report {
	report := &Report{
		Time:        view.Time,
		TotalTrades: len(history),
		Cash:        view.Cash,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		report.Positions = calcPositions(view, prices, &wg)
	}()
	go func() {
		report.RealizedPnL, _ = calcRealizedPnL(history, &wg)
	}()
	go func() {
		report.TotalFees = calcTotalFees(history, &wg)
	}()
	wg.Wait()

	report.MarketValue = decimal.Zero
	report.UnrealizedPnL = decimal.Zero
	for _, p := range report.Positions {
		report.MarketValue = report.MarketValue.Add(p.Value)
		report.UnrealizedPnL = report.UnrealizedPnL.Add(p.GainLoss)
	}
	report.Equity = report.Cash.Add(report.MarketValue)
	return report
}

// BuildReplayReport adds drawdown and loss-streak metrics to the report of
// the final replay ledger.
func BuildReplayReport(result *ReplayResult) *Report {
	report := BuildReport(result.Final, result.History,
		map[string]decimal.Decimal{result.Symbol: result.LastPrice})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		report.MaxDrawdown, report.MaxDrawdownPercent, report.MaxDrawdownDays = calcDrawdownMetrics(result.Snapshots, &wg)
	}()
	go func() {
		report.MaxConsecutiveLosses = calcMaxConsecutiveLosses(result.History, &wg)
	}()
	wg.Wait()
	return report
}

func PrintReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "===== Portfolio Report =====")
	fmt.Fprintf(w, "As Of:                 %s\n", report.Time.Format(ledger.DateLayout))
	fmt.Fprintf(w, "Total Trades:          %d\n", report.TotalTrades)

	fmt.Fprintln(w, "\n-- Holdings --")
	for _, p := range report.Positions {
		stale := ""
		if p.Stale {
			stale = " (no live price)"
		}
		fmt.Fprintf(w, "%-8s %6d @ %s  last %s  value %s  P/L %s%s\n",
			p.Symbol, p.Shares, p.AvgPrice.StringFixed(2), p.LastPrice.StringFixed(2),
			p.Value.StringFixed(2), p.GainLoss.StringFixed(2), stale)
	}

	fmt.Fprintln(w, "\n-- Value --")
	fmt.Fprintf(w, "Cash:                  %s\n", report.Cash.StringFixed(2))
	fmt.Fprintf(w, "Market Value:          %s\n", report.MarketValue.StringFixed(2))
	fmt.Fprintf(w, "Equity:                %s\n", report.Equity.StringFixed(2))

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Unrealized P/L:        %s\n", report.UnrealizedPnL.StringFixed(2))
	fmt.Fprintf(w, "Realized P/L:          %s\n", report.RealizedPnL.StringFixed(2))
	if !report.MaxDrawdown.IsZero() || report.MaxConsecutiveLosses > 0 {
		fmt.Fprintf(w, "Max Drawdown:          %s\n", report.MaxDrawdown.StringFixed(2))
		fmt.Fprintf(w, "Max Drawdown %%:        %s\n", report.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2))
		fmt.Fprintf(w, "Max Drawdown Days:     %d\n", report.MaxDrawdownDays/(24*time.Hour))
		fmt.Fprintf(w, "Max Consecutive Losses:%d\n", report.MaxConsecutiveLosses)
	}

	fmt.Fprintln(w, "\n-- Costs --")
	fmt.Fprintf(w, "Total Fees:            %s\n", report.TotalFees.StringFixed(2))

	fmt.Fprintln(w, "============================")
}

func calcPositions(view types.LedgerView, prices map[string]decimal.Decimal, wg *sync.WaitGroup) []PositionReport {
	defer wg.Done()

	symbols := make([]string, 0, len(view.Positions))
	for sym := range view.Positions {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)

	out := make([]PositionReport, 0, len(symbols))
	for _, sym := range symbols {
		pos := view.Positions[sym]
		price, ok := prices[sym]
		stale := !ok || !price.IsPositive()
		if stale {
			price = pos.AvgPrice
		}
		value := price.Mul(decimal.NewFromInt(pos.Shares)).Round(cashPlaces)
		out = append(out, PositionReport{
			Symbol:    sym,
			Shares:    pos.Shares,
			AvgPrice:  pos.AvgPrice,
			LastPrice: price,
			Value:     value,
			GainLoss:  value.Sub(pos.CostBasis()).Round(cashPlaces),
			Stale:     stale,
		})
	}
	return out
}

// calcRealizedPnL replays the history keeping an average cost per symbol.
// Every sell realizes (price - avg cost) * shares minus its commission; buy
// commissions are charged when paid. The second result is each sell's net
// P/L in history order.
func calcRealizedPnL(history []ledger.Transaction, wg *sync.WaitGroup) (decimal.Decimal, []decimal.Decimal) {
	if wg != nil {
		defer wg.Done()
	}

	type lot struct {
		shares decimal.Decimal
		avg    decimal.Decimal
	}
	lots := make(map[string]*lot)
	realized := decimal.Zero
	var sells []decimal.Decimal

	for _, tx := range history {
		l := lots[tx.Symbol]
		if l == nil {
			l = &lot{shares: decimal.Zero, avg: decimal.Zero}
			lots[tx.Symbol] = l
		}
		qty := decimal.NewFromInt(tx.Shares)
		if tx.Kind.IsBuy() {
			l.avg = weightedAvg(l.avg, l.shares, tx.Price, qty)
			l.shares = l.shares.Add(qty)
			realized = realized.Sub(tx.Commission)
			continue
		}
		pnl := tx.Price.Sub(l.avg).Mul(qty).Sub(tx.Commission)
		realized = realized.Add(pnl)
		sells = append(sells, pnl)
		l.shares = l.shares.Sub(qty)
		if !l.shares.IsPositive() {
			delete(lots, tx.Symbol)
		}
	}
	return realized.Round(cashPlaces), sells
}

func calcTotalFees(history []ledger.Transaction, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	total := decimal.Zero
	for _, tx := range history {
		total = total.Add(tx.Commission)
	}
	return total
}

func calcDrawdownMetrics(
	snapshots []EquityPoint,
	wg *sync.WaitGroup,
) (decimal.Decimal, decimal.Decimal, time.Duration) {
	defer wg.Done()

	if len(snapshots) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	var maxDDDuration time.Duration

	for i, snap := range snapshots {
		if i == 0 || snap.Equity.GreaterThan(peak) {
			peak = snap.Equity
			peakTime = snap.Time
		}

		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(snap.Equity)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDDuration = snap.Time.Sub(peakTime)
			}
		}
	}

	return maxDD, maxDDPct, maxDDDuration
}

func calcMaxConsecutiveLosses(history []ledger.Transaction, wg *sync.WaitGroup) int {
	defer wg.Done()

	_, sells := calcRealizedPnL(history, nil)

	maxLossStreak := 0
	currentStreak := 0
	for _, s := range sells {
		if s.IsNegative() {
			currentStreak++
			if currentStreak > maxLossStreak {
				maxLossStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxLossStreak
}
