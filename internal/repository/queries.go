package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const Schema = `
CREATE TABLE IF NOT EXISTS assets (
    id          SERIAL PRIMARY KEY,
    ticker      TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'STOCK',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS candles (
    asset_id     INTEGER NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
    bar_interval TEXT NOT NULL,
    ts           TIMESTAMPTZ NOT NULL,
    open         NUMERIC NOT NULL,
    high         NUMERIC NOT NULL,
    low          NUMERIC NOT NULL,
    close        NUMERIC NOT NULL,
    volume       NUMERIC NOT NULL,
    PRIMARY KEY (asset_id, bar_interval, ts)
);
`

const getAssetByTicker = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

const upsertAsset = `
INSERT INTO assets (ticker, name, type)
VALUES ($1, $2, $3)
ON CONFLICT (ticker) DO UPDATE
SET name = EXCLUDED.name, type = EXCLUDED.type, modified_at = now()
RETURNING id, ticker, name, type, created_at, modified_at`

const getCandles = `
SELECT asset_id, bar_interval, ts, open, high, low, close, volume
FROM candles
WHERE asset_id = $1 AND bar_interval = $2 AND ts >= $3 AND ts <= $4
ORDER BY ts`

const upsertCandle = `
INSERT INTO candles (asset_id, bar_interval, ts, open, high, low, close, volume)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (asset_id, bar_interval, ts) DO UPDATE
SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
    close = EXCLUDED.close, volume = EXCLUDED.volume`

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type upsertAssetParams struct {
	Ticker string
	Name   string
	Type   string
}

type candleRow struct {
	AssetID  int32
	Interval string
	Ts       time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
}

type getCandlesParams struct {
	AssetID   int32
	Interval  string
	Starttime time.Time
	Endtime   time.Time
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var a assetRow
	err := q.db.QueryRow(ctx, getAssetByTicker, ticker).
		Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}

func (q *queries) UpsertAsset(ctx context.Context, arg upsertAssetParams) (assetRow, error) {
	var a assetRow
	err := q.db.QueryRow(ctx, upsertAsset, arg.Ticker, arg.Name, arg.Type).
		Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}

func (q *queries) GetCandles(ctx context.Context, arg getCandlesParams) ([]candleRow, error) {
	rows, err := q.db.Query(ctx, getCandles, arg.AssetID, arg.Interval, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []candleRow
	for rows.Next() {
		var c candleRow
		if err := rows.Scan(&c.AssetID, &c.Interval, &c.Ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) UpsertCandles(ctx context.Context, rows []candleRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range rows {
		batch.Queue(upsertCandle, c.AssetID, c.Interval, c.Ts, c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	br := q.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert candle %d: %w", i, err)
		}
	}
	return nil
}
