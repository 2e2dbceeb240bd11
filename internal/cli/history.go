package cli

import (
	"fmt"
	"strconv"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"

	"github.com/spf13/cobra"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var (
		csvPath string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List executed transactions, oldest first",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(cmd *cobra.Command, args []string) error {
			eng, err := rt.engine()
			if err != nil {
				return err
			}
			history := eng.History()
			out := cmd.OutOrStdout()

			if csvPath != "" {
				if err := engine.WriteTransactionsCSVFile(csvPath, history); err != nil {
					return fmt.Errorf("export history: %w", err)
				}
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Exported %d transactions to %s", len(history), csvPath)))
				return nil
			}

			if len(history) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No transactions yet."))
				return nil
			}
			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}
			fmt.Fprintln(out, renderHistory(history))
			return nil
		}),
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the history to this CSV file instead of printing it")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N transactions")
	return cmd
}

func renderHistory(history []ledger.Transaction) string {
	rows := make([][]string, 0, len(history))
	for _, tx := range history {
		rows = append(rows, []string{
			tx.Date.Format(ledger.DateLayout),
			string(tx.Kind),
			tx.Symbol,
			strconv.FormatInt(tx.Shares, 10),
			formatUSD(tx.Price),
			formatUSD(tx.Total),
			formatUSD(tx.Commission),
		})
	}
	return renderTable([]string{"Date", "Type", "Symbol", "Shares", "Price", "Total", "Commission"}, rows)
}
