package quotes

import (
	"context"
	"fmt"
	"time"

	"papertrader/types"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

var intervalToYahoo = map[types.Interval]datetime.Interval{
	types.FiveMinutes:    datetime.FiveMins,
	types.FifteenMinutes: datetime.FifteenMins,
	types.Day:            datetime.OneDay,
}

// Yahoo reads quotes and charts from Yahoo Finance.
type Yahoo struct {
	retry RetryConfig
	now   func() time.Time
}

func NewYahoo(retry RetryConfig) *Yahoo {
	return &Yahoo{retry: retry, now: time.Now}
}

func (y *Yahoo) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	var price decimal.Decimal
	err = WithRetry(ctx, y.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote: %w", err)
		}
		if q == nil {
			return fmt.Errorf("no quote for %s", symbol)
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice)
		return nil
	})
	if err != nil {
		return decimal.Zero, unavailable(symbol, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: no market price", ErrQuoteUnavailable, symbol)
	}
	return price, nil
}

func (y *Yahoo) GetHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	start, end, interval, err := periodRange(period, y.now())
	if err != nil {
		return nil, err
	}

	var candles []types.Candle
	err = WithRetry(ctx, y.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: intervalToYahoo[interval],
		}
		iter := chart.Get(params)

		candles = candles[:0]
		for iter.Next() {
			bar := iter.Bar()
			candles = append(candles, types.Candle{
				Ticker:    symbol,
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				Volume:    decimal.NewFromInt(int64(bar.Volume)),
				Interval:  interval,
				Timestamp: time.Unix(int64(bar.Timestamp), 0),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get chart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s: no history for %s", ErrQuoteUnavailable, symbol, period)
	}
	return candles, nil
}
