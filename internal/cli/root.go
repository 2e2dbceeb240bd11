package cli

import (
	"context"

	"papertrader/internal/config"

	"github.com/spf13/cobra"
)

func NewRootCmd(opts ...Option) *cobra.Command {
	rt := &runtime{}
	for _, opt := range opts {
		opt(rt)
	}

	var configPath string
	root := &cobra.Command{
		Use:   "papertrader",
		Short: "Paper-trade stocks against live market quotes",
		Long: `Papertrader keeps a simulated cash and stock ledger and fills orders at
live market prices. No real money or brokerage is involved.

It provides:
  - Manual buy and sell at the current quote
  - Holdings valued at live prices, with realized and unrealized P/L
  - Charts with MA, RSI and MACD based recommendations
  - Auto-trading on those recommendations, capped per day
  - Historical replays of the auto-trader
  - A SQLite journal of every trade and auto-trade decision`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")

	root.AddCommand(
		newPortfolioCmd(rt),
		newBuyCmd(rt),
		newSellCmd(rt),
		newHistoryCmd(rt),
		newResetCmd(rt),
		newQuoteCmd(rt),
		newChartCmd(rt),
		newAutoTradeCmd(rt),
		newReplayCmd(rt),
		newJournalCmd(rt),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// RenderError formats a command error for the terminal.
func RenderError(err error) string {
	return errorStyle.Render("Error: ") + err.Error()
}
