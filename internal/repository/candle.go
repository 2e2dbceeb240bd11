package repository

import (
	"context"
	"errors"
	"time"

	"papertrader/types"

	"github.com/jackc/pgx/v5"
)

var intervalToBucket = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.Day:            "1 day",
	types.Week:           "1 week",
}

func (db *Database) GetCandles(ctx context.Context, assetId int, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	bucket, ok := intervalToBucket[interval]
	if !ok {
		return nil, ErrIntervalNotSupported
	}
	args := getCandlesParams{
		AssetID:   int32(assetId),
		Interval:  bucket,
		Starttime: start,
		Endtime:   end,
	}
	candles, err := db.candles.GetCandles(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(candles, interval, ticker), nil
}

// SaveCandles upserts candles for an asset; existing bars are overwritten.
func (db *Database) SaveCandles(ctx context.Context, assetId int, candles []types.Candle) error {
	rows := make([]candleRow, 0, len(candles))
	for _, c := range candles {
		bucket, ok := intervalToBucket[c.Interval]
		if !ok {
			return ErrIntervalNotSupported
		}
		rows = append(rows, candleRow{
			AssetID:  int32(assetId),
			Interval: bucket,
			Ts:       c.Timestamp,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			Volume:   c.Volume,
		})
	}
	return db.candles.UpsertCandles(ctx, rows)
}

func convertCandles(candleDAOs []candleRow, interval types.Interval, ticker string) []types.Candle {
	var candles []types.Candle
	for _, dao := range candleDAOs {
		candles = append(candles, types.Candle{
			AssetId:   int(dao.AssetID),
			Ticker:    ticker,
			Open:      dao.Open,
			Close:     dao.Close,
			High:      dao.High,
			Low:       dao.Low,
			Volume:    dao.Volume,
			Interval:  interval,
			Timestamp: dao.Ts,
		})
	}
	return candles
}
