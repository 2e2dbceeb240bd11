package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all holdings and history and start over with fresh cash",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				ok, err := rt.prompt.Confirm(fmt.Sprintf(
					"Reset the portfolio to %s? All holdings and history will be lost.",
					formatUSD(rt.cfg.Ledger.InitialBalance)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, mutedStyle.Render("Reset cancelled."))
					return nil
				}
			}

			eng, err := rt.engine()
			if err != nil {
				return err
			}
			if err := eng.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render("Portfolio reset. Cash balance: "+formatUSD(eng.Cash())))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
