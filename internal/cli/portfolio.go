package cli

import (
	"fmt"
	"strconv"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPortfolioCmd(rt *runtime) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "portfolio",
		Aliases: []string{"pf"},
		Short:   "Show cash, holdings valued at live prices, and P/L",
		Args:    cobra.NoArgs,
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			eng, err := rt.engine()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			view := eng.Snapshot()
			provider := rt.quotes(ctx)

			prices := make(map[string]decimal.Decimal, len(view.Positions))
			for sym := range view.Positions {
				price, err := provider.GetCurrentPrice(ctx, sym)
				if err != nil {
					rt.logger.Warn("no live price", zap.String("symbol", sym), zap.Error(err))
					continue
				}
				prices[sym] = price
			}

			report := engine.BuildReport(view, eng.History(), prices)
			out := cmd.OutOrStdout()
			if plain {
				engine.PrintReport(out, report)
				return nil
			}
			fmt.Fprint(out, renderPortfolio(report))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print an unstyled text report")
	return cmd
}

func renderPortfolio(report *engine.Report) string {
	s := titleStyle.Render("Portfolio as of "+report.Time.Format(ledger.DateLayout)) + "\n"

	if len(report.Positions) == 0 {
		s += mutedStyle.Render("No holdings.") + "\n"
	} else {
		rows := make([][]string, 0, len(report.Positions))
		for _, p := range report.Positions {
			last := formatUSD(p.LastPrice)
			if p.Stale {
				last += " *"
			}
			rows = append(rows, []string{
				p.Symbol,
				strconv.FormatInt(p.Shares, 10),
				formatUSD(p.AvgPrice),
				last,
				formatUSD(p.Value),
				plStyle(p.GainLoss).Render(formatSignedUSD(p.GainLoss)),
			})
		}
		s += renderTable([]string{"Symbol", "Shares", "Avg Price", "Last", "Value", "Gain/Loss"}, rows) + "\n"
		for _, p := range report.Positions {
			if p.Stale {
				s += mutedStyle.Render("* no live price, valued at average price") + "\n"
				break
			}
		}
	}

	s += fmt.Sprintf("Cash:           %s\n", formatUSD(report.Cash))
	s += fmt.Sprintf("Market value:   %s\n", formatUSD(report.MarketValue))
	s += fmt.Sprintf("Total equity:   %s\n", formatUSD(report.Equity))
	s += fmt.Sprintf("Unrealized P/L: %s\n", plStyle(report.UnrealizedPnL).Render(formatSignedUSD(report.UnrealizedPnL)))
	s += fmt.Sprintf("Realized P/L:   %s\n", plStyle(report.RealizedPnL).Render(formatSignedUSD(report.RealizedPnL)))
	if !report.TotalFees.IsZero() {
		s += fmt.Sprintf("Commissions:    %s\n", formatUSD(report.TotalFees))
	}
	return s
}
