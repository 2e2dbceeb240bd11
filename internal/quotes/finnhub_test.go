package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noRetry = RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func newTestFinnhub(t *testing.T, handler http.HandlerFunc) *Finnhub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewFinnhub(srv.URL, "test-key", 2*time.Second, noRetry)
	f.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return f
}

func TestFinnhubGetCurrentPrice(t *testing.T) {
	f := newTestFinnhub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":189.25,"h":190,"l":187.5,"o":188,"pc":187.9,"t":1700000000}`))
	})

	price, err := f.GetCurrentPrice(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("189.25")))
}

func TestFinnhubGetCurrentPriceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"unknown symbol", http.StatusOK, `{"c":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFinnhub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := f.GetCurrentPrice(context.Background(), "ZZZZ")
			assert.ErrorIs(t, err, ErrQuoteUnavailable)
		})
	}
}

func TestFinnhubGetHistory(t *testing.T) {
	f := newTestFinnhub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "D", q.Get("resolution"))
		assert.Equal(t, "1700000000", q.Get("to"))
		assert.Equal(t, "1692224000", q.Get("from"))
		_, _ = w.Write([]byte(`{"s":"ok","t":[1699900000,1699986400],"o":[10,11],"h":[12,13],"l":[9,10],"c":[11,12.5],"v":[1000,2000]}`))
	})

	candles, err := f.GetHistory(context.Background(), "MSFT", types.PeriodNinetyDays)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, "MSFT", candles[1].Ticker)
	assert.Equal(t, types.Day, candles[1].Interval)
	assert.True(t, candles[1].Close.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, time.Unix(1699986400, 0), candles[1].Timestamp)
}

func TestFinnhubGetHistoryFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		period types.Period
	}{
		{"no data", `{"s":"no_data"}`, types.PeriodOneMonth},
		{"mismatched arrays", `{"s":"ok","t":[1],"o":[1,2],"h":[1],"l":[1],"c":[1]}`, types.PeriodOneMonth},
		{"unsupported period", `{"s":"ok"}`, types.Period("10y")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFinnhub(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := f.GetHistory(context.Background(), "AAPL", tt.period)
			assert.ErrorIs(t, err, ErrQuoteUnavailable)
		})
	}
}
