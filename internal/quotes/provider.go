package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

// ErrQuoteUnavailable wraps every failure to obtain a price or history.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Provider supplies live prices and OHLC history for ticker symbols.
type Provider interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error)
}

func normalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: symbol cannot be empty", ErrQuoteUnavailable)
	}
	if len(s) > 10 {
		return "", fmt.Errorf("%w: symbol too long: %s", ErrQuoteUnavailable, s)
	}
	return s, nil
}

// periodRange returns the [start, end] window and bar interval for a period
// ending at now.
func periodRange(period types.Period, now time.Time) (time.Time, time.Time, types.Interval, error) {
	d, ok := types.PeriodToTime[period]
	if !ok {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: unsupported period %q", ErrQuoteUnavailable, period)
	}
	return now.Add(-d), now, types.PeriodToInterval[period], nil
}

func unavailable(symbol string, err error) error {
	if errors.Is(err, ErrQuoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrQuoteUnavailable, symbol, err)
}
