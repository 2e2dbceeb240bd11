package cli

import (
	"fmt"

	"papertrader/internal/engine"

	"github.com/spf13/cobra"
)

func newQuoteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Show the current market price",
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider := rt.quotes(ctx)
			out := cmd.OutOrStdout()
			for _, arg := range args {
				symbol, err := engine.NormalizeSymbol(arg)
				if err != nil {
					return err
				}
				price, err := provider.GetCurrentPrice(ctx, symbol)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %s\n", symbol, formatUSD(price))
			}
			return nil
		}),
	}
}
