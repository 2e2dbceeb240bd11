package quotes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"papertrader/internal/repository"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	price        decimal.Decimal
	candles      []types.Candle
	err          error
	historyCalls int
}

func (m *mockProvider) GetCurrentPrice(context.Context, string) (decimal.Decimal, error) {
	return m.price, m.err
}

func (m *mockProvider) GetHistory(context.Context, string, types.Period) ([]types.Candle, error) {
	m.historyCalls++
	return m.candles, m.err
}

type mockCache struct {
	asset    *types.Asset
	candles  []types.Candle
	readErr  error
	saved    []types.Candle
	upserted []string
}

func (m *mockCache) GetAssetByTicker(_ context.Context, ticker string) (*types.Asset, error) {
	if m.asset == nil {
		return nil, fmt.Errorf("ticker %s %w", ticker, repository.ErrAssetNotFound)
	}
	return m.asset, nil
}

func (m *mockCache) UpsertAsset(_ context.Context, ticker, _ string, _ types.AssetType) (*types.Asset, error) {
	m.upserted = append(m.upserted, ticker)
	return &types.Asset{Id: 42, Ticker: ticker}, nil
}

func (m *mockCache) GetCandles(context.Context, int, string, types.Interval, time.Time, time.Time) ([]types.Candle, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.candles) == 0 {
		return nil, repository.ErrNoCandles
	}
	return m.candles, nil
}

func (m *mockCache) SaveCandles(_ context.Context, _ int, candles []types.Candle) error {
	m.saved = append(m.saved, candles...)
	return nil
}

var cacheNow = time.Date(2024, 6, 3, 16, 0, 0, 0, time.UTC)

func dailyCandles(from, to time.Time) []types.Candle {
	var out []types.Candle
	for d := from; !d.After(to); d = d.Add(24 * time.Hour) {
		out = append(out, types.Candle{Ticker: "AAPL", Close: decimal.NewFromInt(1), Interval: types.Day, Timestamp: d})
	}
	return out
}

func newTestCached(up Provider, cache candleCache) *Cached {
	c := NewCached(up, cache, nil)
	c.now = func() time.Time { return cacheNow }
	return c
}

func TestCachedServesCoveredRange(t *testing.T) {
	start := cacheNow.Add(-30 * 24 * time.Hour)
	cache := &mockCache{asset: &types.Asset{Id: 1}, candles: dailyCandles(start.Add(24*time.Hour), cacheNow.Add(-24*time.Hour))}
	up := &mockProvider{}

	got, err := newTestCached(up, cache).GetHistory(context.Background(), "AAPL", types.PeriodOneMonth)
	require.NoError(t, err)
	assert.Len(t, got, len(cache.candles))
	assert.Equal(t, 0, up.historyCalls)
}

func TestCachedFallsBackAndWritesBack(t *testing.T) {
	tests := []struct {
		name  string
		cache *mockCache
	}{
		{"unknown asset", &mockCache{}},
		{"no candles", &mockCache{asset: &types.Asset{Id: 1}}},
		{"stale range", &mockCache{asset: &types.Asset{Id: 1}, candles: dailyCandles(cacheNow.Add(-30*24*time.Hour), cacheNow.Add(-20*24*time.Hour))}},
		{"cache down", &mockCache{asset: &types.Asset{Id: 1}, readErr: errors.New("conn refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := dailyCandles(cacheNow.Add(-29*24*time.Hour), cacheNow)
			up := &mockProvider{candles: upstream}

			got, err := newTestCached(up, tt.cache).GetHistory(context.Background(), "aapl", types.PeriodOneMonth)
			require.NoError(t, err)
			assert.Equal(t, upstream, got)
			assert.Equal(t, 1, up.historyCalls)
			assert.Equal(t, []string{"AAPL"}, tt.cache.upserted)
			assert.Len(t, tt.cache.saved, len(upstream))
		})
	}
}

func TestCachedIntradayBypassesCache(t *testing.T) {
	cache := &mockCache{asset: &types.Asset{Id: 1}}
	up := &mockProvider{candles: []types.Candle{{Interval: types.FiveMinutes}}}

	_, err := newTestCached(up, cache).GetHistory(context.Background(), "AAPL", types.PeriodOneDay)
	require.NoError(t, err)
	assert.Equal(t, 1, up.historyCalls)
	assert.Empty(t, cache.saved)
}

func TestCachedPropagatesUpstreamErrors(t *testing.T) {
	up := &mockProvider{err: fmt.Errorf("%w: boom", ErrQuoteUnavailable)}
	c := newTestCached(up, &mockCache{})

	_, err := c.GetHistory(context.Background(), "AAPL", types.PeriodOneYear)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	_, err = c.GetCurrentPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}
