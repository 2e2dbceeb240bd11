package cli

import (
	"fmt"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"

	"github.com/spf13/cobra"
)

func newBuyCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "buy SYMBOL QUANTITY",
		Short:   "Buy shares at the current market price",
		Example: "  papertrader buy AAPL 10",
		Args:    cobra.ExactArgs(2),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			return runTrade(cmd, rt, ledger.KindBuy, args[0], args[1])
		}),
	}
}

func newSellCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "sell SYMBOL QUANTITY",
		Short:   "Sell shares at the current market price",
		Example: "  papertrader sell AAPL 5",
		Args:    cobra.ExactArgs(2),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			return runTrade(cmd, rt, ledger.KindSell, args[0], args[1])
		}),
	}
}

func runTrade(cmd *cobra.Command, rt *runtime, kind ledger.Kind, symbolArg, quantityArg string) error {
	symbol, err := engine.NormalizeSymbol(symbolArg)
	if err != nil {
		return err
	}
	quantity, err := engine.ParseQuantity(quantityArg)
	if err != nil {
		return err
	}

	eng, err := rt.engine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	price, err := rt.quotes(ctx).GetCurrentPrice(ctx, symbol)
	if err != nil {
		return err
	}

	var tx ledger.Transaction
	if kind == ledger.KindBuy {
		tx, err = eng.Buy(symbol, quantity, price)
	} else {
		tx, err = eng.Sell(symbol, quantity, price)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render(tradeSummary(tx)))
	if !tx.Commission.IsZero() {
		fmt.Fprintln(out, mutedStyle.Render("Commission: "+formatUSD(tx.Commission)))
	}
	fmt.Fprintln(out, mutedStyle.Render("Cash balance: "+formatUSD(eng.Cash())))
	return nil
}

func tradeSummary(tx ledger.Transaction) string {
	verb := "Bought"
	if !tx.Kind.IsBuy() {
		verb = "Sold"
	}
	if tx.Kind.IsAuto() {
		verb = "Auto-" + verb
	}
	return fmt.Sprintf("%s %s of %s at %s for a total of %s",
		verb, formatShares(tx.Shares), tx.Symbol, formatUSD(tx.Price), formatUSD(tx.Total))
}
