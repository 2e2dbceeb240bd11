package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"papertrader/types"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const FinnhubBaseURL = "https://finnhub.io/api/v1"

type finnhubQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type finnhubCandles struct {
	Status string    `json:"s"`
	Time   []int64   `json:"t"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
}

// Finnhub reads quotes and candles from the Finnhub REST API.
type Finnhub struct {
	client *resty.Client
	apiKey string
	retry  RetryConfig
	now    func() time.Time
}

func NewFinnhub(baseURL, apiKey string, timeout time.Duration, retry RetryConfig) *Finnhub {
	if baseURL == "" {
		baseURL = FinnhubBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Finnhub{
		client: client,
		apiKey: apiKey,
		retry:  retry,
		now:    time.Now,
	}
}

func (f *Finnhub) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	var q finnhubQuote
	err = WithRetry(ctx, f.retry, func() error {
		resp, err := f.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"token":  f.apiKey,
			}).
			Get("/quote")
		if err != nil {
			return fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}
		if err := json.Unmarshal(resp.Body(), &q); err != nil {
			return fmt.Errorf("failed to parse quote response: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, unavailable(symbol, err)
	}
	if q.Current <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s: no market price", ErrQuoteUnavailable, symbol)
	}
	return decimal.NewFromFloat(q.Current), nil
}

func (f *Finnhub) GetHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	start, end, interval, err := periodRange(period, f.now())
	if err != nil {
		return nil, err
	}

	var c finnhubCandles
	err = WithRetry(ctx, f.retry, func() error {
		resp, err := f.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol":     symbol,
				"resolution": string(interval),
				"from":       strconv.FormatInt(start.Unix(), 10),
				"to":         strconv.FormatInt(end.Unix(), 10),
				"token":      f.apiKey,
			}).
			Get("/stock/candle")
		if err != nil {
			return fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}
		if err := json.Unmarshal(resp.Body(), &c); err != nil {
			return fmt.Errorf("failed to parse candle response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable(symbol, err)
	}
	if c.Status != "ok" {
		return nil, fmt.Errorf("%w: %s: candle status %q", ErrQuoteUnavailable, symbol, c.Status)
	}
	return convertFinnhubCandles(symbol, interval, c)
}

func convertFinnhubCandles(symbol string, interval types.Interval, c finnhubCandles) ([]types.Candle, error) {
	n := len(c.Time)
	if len(c.Open) != n || len(c.High) != n || len(c.Low) != n || len(c.Close) != n {
		return nil, fmt.Errorf("%w: %s: mismatched candle arrays", ErrQuoteUnavailable, symbol)
	}
	candles := make([]types.Candle, 0, n)
	for i := 0; i < n; i++ {
		volume := decimal.Zero
		if i < len(c.Volume) {
			volume = decimal.NewFromFloat(c.Volume[i])
		}
		candles = append(candles, types.Candle{
			Ticker:    symbol,
			Open:      decimal.NewFromFloat(c.Open[i]),
			High:      decimal.NewFromFloat(c.High[i]),
			Low:       decimal.NewFromFloat(c.Low[i]),
			Close:     decimal.NewFromFloat(c.Close[i]),
			Volume:    volume,
			Interval:  interval,
			Timestamp: time.Unix(c.Time[i], 0),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s: no history", ErrQuoteUnavailable, symbol)
	}
	return candles, nil
}
