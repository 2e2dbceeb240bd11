package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the timestamp format of the "date" field.
const DateLayout = "2006-01-02 15:04:05"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type document struct {
	CashBalance        *decimal.Decimal         `json:"cash_balance"`
	Stocks             map[string]stockDocument `json:"stocks"`
	TransactionHistory []transactionDocument    `json:"transaction_history"`
}

type stockDocument struct {
	Shares   int64           `json:"shares"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

type transactionDocument struct {
	Date       string          `json:"date"`
	Type       string          `json:"type"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Total      decimal.Decimal `json:"total"`
	Commission decimal.Decimal `json:"commission"`
}

// Marshal encodes a ledger into its persisted JSON form.
func Marshal(l *Ledger) ([]byte, error) {
	cash := l.Cash
	doc := document{
		CashBalance:        &cash,
		Stocks:             make(map[string]stockDocument, len(l.Positions)),
		TransactionHistory: make([]transactionDocument, 0, len(l.History)),
	}
	for sym, pos := range l.Positions {
		doc.Stocks[sym] = stockDocument{Shares: pos.Shares, AvgPrice: pos.AvgPrice}
	}
	for _, tx := range l.History {
		doc.TransactionHistory = append(doc.TransactionHistory, transactionDocument{
			Date:       tx.Date.Format(DateLayout),
			Type:       string(tx.Kind),
			Symbol:     tx.Symbol,
			Shares:     tx.Shares,
			Price:      tx.Price,
			Total:      tx.Total,
			Commission: tx.Commission,
		})
	}
	return json.MarshalIndent(doc, "", "    ")
}

// Unmarshal decodes and validates a persisted ledger. Any structural or
// invariant problem is reported as ErrMalformedLedger.
func Unmarshal(data []byte) (*Ledger, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLedger, err)
	}
	if doc.CashBalance == nil {
		return nil, fmt.Errorf("%w: missing cash_balance", ErrMalformedLedger)
	}

	l := New(*doc.CashBalance)
	for sym, st := range doc.Stocks {
		l.Positions[sym] = Position{Shares: st.Shares, AvgPrice: st.AvgPrice}
	}
	for i, td := range doc.TransactionHistory {
		date, err := time.ParseInLocation(DateLayout, td.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: bad date %q", ErrMalformedLedger, i, td.Date)
		}
		l.History = append(l.History, Transaction{
			Date:       date,
			Kind:       Kind(td.Type),
			Symbol:     td.Symbol,
			Shares:     td.Shares,
			Price:      td.Price,
			Total:      td.Total,
			Commission: td.Commission,
		})
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
