package cli

import (
	"fmt"

	"papertrader/internal/config"
	"papertrader/internal/engine"
	"papertrader/types"

	"github.com/spf13/cobra"
)

func newReplayCmd(rt *runtime) *cobra.Command {
	var (
		period   string
		strategy string
		quantity int64
		maxInv   string
		cash     string
		warmup   int
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "replay SYMBOL",
		Short: "Run the auto-trader over historical daily bars",
		Long: `Replays the auto-trader bar by bar over a symbol's history on a fresh
in-memory ledger. Each bar's recommendation sees only the bars up to it,
and trades fill at the bar close. The real portfolio is not touched.`,
		Args: cobra.ExactArgs(1),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			symbol, err := engine.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}
			p := types.Period(period)
			if !p.Valid() {
				return fmt.Errorf("unknown period %q", period)
			}
			if strategy == "" {
				strategy = rt.cfg.AutoTrade.Strategy
			}

			at := rt.cfg.AutoTradeDefaults()
			if cmd.Flags().Changed("qty") {
				at.QuantityPerTrade = quantity
			}
			if cmd.Flags().Changed("max") {
				d, err := parseAmount(maxInv)
				if err != nil {
					return fmt.Errorf("%w: max investment per trade: %v", engine.ErrInvalidAutoTradeConfig, err)
				}
				at.MaxInvestmentPerTrade = d
			}
			if at.QuantityPerTrade <= 0 {
				if at.QuantityPerTrade, err = rt.prompt.Quantity("Shares per trade:"); err != nil {
					return err
				}
			}
			if !at.MaxInvestmentPerTrade.IsPositive() {
				if at.MaxInvestmentPerTrade, err = rt.prompt.Amount("Max investment per trade ($):"); err != nil {
					return err
				}
			}
			initial := rt.cfg.Ledger.InitialBalance
			if cmd.Flags().Changed("cash") {
				d, err := parseAmount(cash)
				if err != nil {
					return err
				}
				initial = d
			}
			if !cmd.Flags().Changed("warmup") {
				warmup = defaultWarmup(strategy)
			}
			fee, err := engine.FeeSchedule(rt.cfg.Ledger.Commission)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			candles, err := rt.quotes(ctx).GetHistory(ctx, symbol, p)
			if err != nil {
				return err
			}

			result, err := engine.Replay(symbol, candles, rt.recommender(strategy),
				engine.NewReplayConfig(initial, at, fee, warmup, !quiet), rt.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Replay %s %s (%s), %d bars from %s to %s",
				symbol, p, strategy, len(candles),
				result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))))
			engine.PrintReport(out, engine.BuildReplayReport(result))

			buys, sells, skips := 0, 0, 0
			for _, d := range result.Decisions {
				switch d.Action {
				case engine.ActionBuy:
					buys++
				case engine.ActionSell:
					sells++
				default:
					skips++
				}
			}
			fmt.Fprintf(out, "Decisions: %d buys, %d sells, %d skipped\n", buys, sells, skips)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(types.PeriodOneYear), "history period: 1mo, 3mo, 6mo, 1y or 90d")
	cmd.Flags().StringVar(&strategy, "strategy", "", "recommendation source: technical or donchian")
	cmd.Flags().Int64Var(&quantity, "qty", 0, "shares per trade")
	cmd.Flags().StringVar(&maxInv, "max", "", "max investment per buy in dollars")
	cmd.Flags().StringVar(&cash, "cash", "", "starting cash (default ledger.initial_balance)")
	cmd.Flags().IntVar(&warmup, "warmup", 0, "bars that only feed the recommender before trading starts")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

// defaultWarmup is the history each recommender needs before it can vote.
func defaultWarmup(strategy string) int {
	if strategy == config.StrategyDonchian {
		return 20
	}
	return 50
}
