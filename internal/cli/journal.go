package cli

import (
	"errors"
	"fmt"
	"strconv"

	"papertrader/internal/journal"
	"papertrader/internal/ledger"

	"github.com/spf13/cobra"
)

var errJournalDisabled = errors.New("journal is disabled (journal.path is empty)")

func newJournalCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the trade and auto-trade decision journal",
		Long: `Query the SQLite journal of executed trades and auto-trade decisions.

Subcommands:
  trades     - executed trades, manual and automatic
  decisions  - every auto-trade evaluation, including skips`,
	}
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "number of most recent records to show (0 for all)")

	open := func() (*journal.SQLite, error) {
		j := rt.openJournal()
		if j == nil {
			return nil, errJournalDisabled
		}
		return j, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "trades",
		Short: "List journaled trades",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			recs, err := j.ListTrades(limit)
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No trades journaled."))
				return nil
			}
			history := make([]ledger.Transaction, len(recs))
			for i, r := range recs {
				history[i] = r.Transaction
			}
			fmt.Fprintln(out, renderHistory(history))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decisions",
		Short: "List journaled auto-trade decisions",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			recs, err := j.ListDecisions(limit)
			if err != nil {
				return fmt.Errorf("query decisions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No decisions journaled."))
				return nil
			}
			fmt.Fprintln(out, renderDecisions(recs))
			return nil
		}),
	})
	return cmd
}

func renderDecisions(recs []journal.DecisionRecord) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		shares, price := "", ""
		if r.Shares != nil {
			shares = strconv.FormatInt(*r.Shares, 10)
		}
		if r.Price != nil {
			price = formatUSD(*r.Price)
		}
		rows = append(rows, []string{
			r.Time.Local().Format(ledger.DateLayout),
			r.Symbol,
			string(r.Signal),
			string(r.Action),
			shares,
			price,
			r.Reason,
		})
	}
	return renderTable([]string{"Time", "Symbol", "Signal", "Action", "Shares", "Price", "Reason"}, rows)
}
