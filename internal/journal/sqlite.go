package journal

import (
	"database/sql"
	"fmt"
	"slices"

	"papertrader/internal/engine"
	"papertrader/internal/id"
	"papertrader/internal/ledger"
	"papertrader/types"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(tx ledger.Transaction) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, kind, symbol, shares, price, total, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.New(), tx.Date, string(tx.Kind), tx.Symbol, tx.Shares,
		tx.Price, tx.Total, tx.Commission,
	)
	return err
}

func (j *SQLite) RecordDecision(d engine.Decision) error {
	rec := newDecisionRecord(id.New(), d)
	var shares sql.NullInt64
	var price sql.NullString
	if rec.Shares != nil {
		shares = sql.NullInt64{Int64: *rec.Shares, Valid: true}
		price = sql.NullString{String: rec.Price.String(), Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(decision_id, time, symbol, signal, action, reason, shares, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DecisionID, rec.Time, rec.Symbol, string(rec.Signal),
		string(rec.Action), rec.Reason, shares, price,
	)
	return err
}

// ListTrades returns the latest limit trades, oldest first. A limit of zero
// or less returns every trade.
func (j *SQLite) ListTrades(limit int) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, kind, symbol, shares, price, total, commission
		FROM trades
		ORDER BY trade_id DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		var kind string
		tx := &rec.Transaction
		if err := rows.Scan(
			&rec.TradeID,
			&tx.Date,
			&kind,
			&tx.Symbol,
			&tx.Shares,
			&tx.Price,
			&tx.Total,
			&tx.Commission,
		); err != nil {
			return nil, err
		}
		tx.Kind = ledger.Kind(kind)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// ListDecisions returns the latest limit decisions, oldest first.
func (j *SQLite) ListDecisions(limit int) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT decision_id, time, symbol, signal, action, reason, shares, price
		FROM decisions
		ORDER BY decision_id DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var signal, action string
		var shares sql.NullInt64
		var price decimal.NullDecimal
		if err := rows.Scan(
			&rec.DecisionID,
			&rec.Time,
			&rec.Symbol,
			&signal,
			&action,
			&rec.Reason,
			&shares,
			&price,
		); err != nil {
			return nil, err
		}
		rec.Signal = types.Side(signal)
		rec.Action = engine.Action(action)
		if shares.Valid {
			rec.Shares = &shares.Int64
		}
		if price.Valid {
			rec.Price = &price.Decimal
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// sqlLimit maps "no limit" onto SQLite's LIMIT -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
