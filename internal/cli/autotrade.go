package cli

import (
	"context"
	"fmt"
	"io"

	"papertrader/internal/app"
	"papertrader/internal/engine"
	"papertrader/types"

	"github.com/spf13/cobra"
)

type autoTradeFlags struct {
	quantity       int64
	maxInvestment  string
	frequency      string
	strategy       string
	dailyBuyLimit  int
	dailySellLimit int
}

func newAutoTradeCmd(rt *runtime) *cobra.Command {
	var f autoTradeFlags
	cmd := &cobra.Command{
		Use:   "autotrade SYMBOL",
		Short: "Trade a symbol automatically on indicator recommendations until interrupted",
		Long: `Evaluates the recommendation for SYMBOL at the chosen frequency and buys or
sells the configured quantity. Buys are capped by the max investment per
trade and by available cash. Both buys and sells are limited per rolling day.

Missing quantity or max investment are prompted for. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			symbol, err := engine.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}
			cfg, err := f.resolve(rt, cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAutoTrade(cmd.Context(), cmd.OutOrStdout(), rt, symbol, cfg, f.strategy)
		}),
	}
	cmd.Flags().Int64Var(&f.quantity, "qty", 0, "shares per trade (default from config, prompted when unset)")
	cmd.Flags().StringVar(&f.maxInvestment, "max", "", "max investment per buy in dollars (default from config, prompted when unset)")
	cmd.Flags().StringVar(&f.frequency, "freq", "", "check frequency: 1m, 5m, 10m, 15m, 30m or 1h")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "recommendation source: technical or donchian")
	cmd.Flags().IntVar(&f.dailyBuyLimit, "buy-limit", 0, "max auto-buys per day")
	cmd.Flags().IntVar(&f.dailySellLimit, "sell-limit", 0, "max auto-sells per day")
	return cmd
}

// resolve merges flags over config defaults and prompts for whatever is
// still missing.
func (f *autoTradeFlags) resolve(rt *runtime, cmd *cobra.Command) (engine.AutoTradeConfig, error) {
	cfg := rt.cfg.AutoTradeDefaults()
	flags := cmd.Flags()

	if flags.Changed("qty") {
		cfg.QuantityPerTrade = f.quantity
	}
	if flags.Changed("max") {
		d, err := parseAmount(f.maxInvestment)
		if err != nil {
			return cfg, fmt.Errorf("%w: max investment per trade: %v", engine.ErrInvalidAutoTradeConfig, err)
		}
		cfg.MaxInvestmentPerTrade = d
	}
	if flags.Changed("freq") {
		cfg.Frequency = types.Frequency(f.frequency)
	}
	if flags.Changed("buy-limit") {
		cfg.DailyBuyLimit = f.dailyBuyLimit
	}
	if flags.Changed("sell-limit") {
		cfg.DailySellLimit = f.dailySellLimit
	}
	if f.strategy == "" {
		f.strategy = rt.cfg.AutoTrade.Strategy
	}

	if !flags.Changed("qty") && cfg.QuantityPerTrade <= 0 {
		q, err := rt.prompt.Quantity("Shares per trade:")
		if err != nil {
			return cfg, err
		}
		cfg.QuantityPerTrade = q
	}
	if !flags.Changed("max") && !cfg.MaxInvestmentPerTrade.IsPositive() {
		d, err := rt.prompt.Amount("Max investment per trade ($):")
		if err != nil {
			return cfg, err
		}
		cfg.MaxInvestmentPerTrade = d
	}
	return cfg, nil
}

func runAutoTrade(ctx context.Context, out io.Writer, rt *runtime, symbol string, cfg engine.AutoTradeConfig, strategy string) error {
	eng, err := rt.engine()
	if err != nil {
		return err
	}

	var decisions app.DecisionRecorder
	if j := rt.openJournal(); j != nil {
		decisions = j
	}
	session := app.NewSession(eng, rt.quotes(ctx), rt.recommender(strategy), app.Config{
		RefreshInterval: rt.cfg.AutoTrade.RefreshInterval,
		Decisions:       decisions,
	}, rt.logger)

	// The session outlives ctx briefly so the final status can be read.
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()

	if err := session.EnableAutoTrade(ctx, symbol, cfg); err != nil {
		return err
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf(
		"Auto-trading %s: %s per trade, max %s, every %s (%s). Ctrl-C to stop.",
		symbol, formatShares(cfg.QuantityPerTrade), formatUSD(cfg.MaxInvestmentPerTrade), cfg.Frequency, strategy)))
	if err := session.EvaluateNow(ctx); err != nil {
		return err
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case e := <-session.Updates():
			printEvent(out, e)
		}
	}

	status, err := session.AutoTradeStatus(runCtx)
	if err == nil {
		view, err := session.Snapshot(runCtx)
		if err == nil {
			fmt.Fprintf(out, "\nStopped. Today: %d buys, %d sells. Cash balance: %s\n",
				status.Counters.BuyCount, status.Counters.SellCount, formatUSD(view.Cash))
		}
	}
	_ = session.DisableAutoTrade(runCtx)
	stop()
	return <-done
}

func printEvent(out io.Writer, e app.Event) {
	ts := e.Time.Local().Format("15:04:05")
	switch e.Kind {
	case app.EventDecision:
		d := e.Decision
		switch {
		case d.Transaction != nil:
			fmt.Fprintf(out, "%s %s\n", ts, successStyle.Render(tradeSummary(*d.Transaction)))
		default:
			fmt.Fprintf(out, "%s %s\n", ts, mutedStyle.Render(fmt.Sprintf("%s %s at %s: skipped, %s", d.Signal, e.Symbol, formatUSD(e.Price), d.Reason)))
		}
	case app.EventTrade:
		fmt.Fprintf(out, "%s %s\n", ts, successStyle.Render(tradeSummary(*e.Transaction)))
	case app.EventRejected, app.EventError:
		fmt.Fprintf(out, "%s %s\n", ts, errorStyle.Render(e.Message))
	case app.EventAutoTrade:
		fmt.Fprintf(out, "%s %s\n", ts, mutedStyle.Render(e.Message))
	case app.EventPrice:
		// Prices are refreshed quietly.
	}
}

