package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"papertrader/internal/ledger"
)

// WriteTransactionsCSVFile writes the transaction history to a CSV file at the given path.
func WriteTransactionsCSVFile(path string, history []ledger.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transactions file: %w", err)
	}
	defer f.Close()

	return WriteTransactionsCSV(f, history)
}

// WriteTransactionsCSV writes the transaction history to any io.Writer as CSV.
func WriteTransactionsCSV(w io.Writer, history []ledger.Transaction) error {
	cw := csv.NewWriter(w)

	header := []string{
		"date",
		"type",
		"symbol",
		"shares",
		"price",
		"total",
		"commission",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range history {
		if err := writeTransactionRow(cw, tx); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeTransactionRow(cw *csv.Writer, tx ledger.Transaction) error {
	record := []string{
		tx.Date.Format(ledger.DateLayout),
		string(tx.Kind),
		tx.Symbol,
		strconv.FormatInt(tx.Shares, 10),
		tx.Price.StringFixed(2),
		tx.Total.StringFixed(2),
		tx.Commission.StringFixed(2),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
