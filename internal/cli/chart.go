package cli

import (
	"fmt"
	"slices"
	"strings"

	"papertrader/internal/engine"
	"papertrader/strategies/technical"
	"papertrader/types"

	"github.com/spf13/cobra"
)

func newChartCmd(rt *runtime) *cobra.Command {
	var (
		period string
		rows   int
		ma     bool
		rsi    bool
		macd   bool
	)
	cmd := &cobra.Command{
		Use:   "chart SYMBOL",
		Short: "Show recent price bars and the indicator recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			symbol, err := engine.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}
			p := types.Period(period)
			if !slices.Contains(types.ChartPeriods, p) {
				return fmt.Errorf("unknown period %q, choose one of %v", period, types.ChartPeriods)
			}

			indicators := technical.Indicators{
				MA:   rt.cfg.Indicators.MA,
				RSI:  rt.cfg.Indicators.RSI,
				MACD: rt.cfg.Indicators.MACD,
			}
			if cmd.Flags().Changed("ma") {
				indicators.MA = ma
			}
			if cmd.Flags().Changed("rsi") {
				indicators.RSI = rsi
			}
			if cmd.Flags().Changed("macd") {
				indicators.MACD = macd
			}

			ctx := cmd.Context()
			provider := rt.quotes(ctx)
			candles, err := provider.GetHistory(ctx, symbol, p)
			if err != nil {
				return err
			}
			// Indicators always use the daily 90-day window, whatever is charted.
			daily, err := provider.GetHistory(ctx, symbol, types.PeriodNinetyDays)
			if err != nil {
				return err
			}
			analysis := technical.NewRecommender(indicators).Analyze(daily)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s - %s", symbol, p)))
			fmt.Fprintln(out, renderCandles(candles, rows))
			fmt.Fprint(out, renderAnalysis(analysis))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(types.PeriodOneMonth), "chart period: 1d, 5d, 1mo, 3mo, 6mo or 1y")
	cmd.Flags().IntVar(&rows, "rows", 15, "number of most recent bars to show")
	cmd.Flags().BoolVar(&ma, "ma", true, "include the MA20/MA50 vote")
	cmd.Flags().BoolVar(&rsi, "rsi", true, "include the RSI(14) vote")
	cmd.Flags().BoolVar(&macd, "macd", true, "include the MACD(12,26,9) vote")
	return cmd
}

func renderCandles(candles []types.Candle, rows int) string {
	if len(candles) == 0 {
		return mutedStyle.Render("No price data.")
	}
	if rows > 0 && len(candles) > rows {
		candles = candles[len(candles)-rows:]
	}
	layout := "2006-01-02"
	if candles[0].Interval != types.Day && candles[0].Interval != types.Week {
		layout = "01-02 15:04"
	}

	out := make([][]string, 0, len(candles))
	for _, c := range candles {
		out = append(out, []string{
			c.Timestamp.Local().Format(layout),
			c.Open.StringFixed(2),
			c.High.StringFixed(2),
			c.Low.StringFixed(2),
			c.Close.StringFixed(2),
			c.Volume.StringFixed(0),
		})
	}
	return renderTable([]string{"Time", "Open", "High", "Low", "Close", "Volume"}, out)
}

func renderAnalysis(a technical.Analysis) string {
	var b strings.Builder
	for _, v := range a.Votes {
		fmt.Fprintf(&b, "%-5s %-5s %s\n", v.Indicator, v.Side, mutedStyle.Render(v.Detail))
	}
	label := string(a.Signal.Side)
	switch a.Signal.Side {
	case types.SideTypeBuy:
		label = gainStyle.Bold(true).Render(label)
	case types.SideTypeSell:
		label = lossStyle.Bold(true).Render(label)
	}
	fmt.Fprintf(&b, "Recommendation: %s\n", label)
	return b.String()
}
