package quotes

import (
	"context"
	"errors"
	"time"

	"papertrader/internal/repository"
	"papertrader/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// coverageSlack tolerates weekends and holidays at either end of a cached
// daily range.
const coverageSlack = 4 * 24 * time.Hour

type candleCache interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error)
	UpsertAsset(ctx context.Context, ticker, name string, assetType types.AssetType) (*types.Asset, error)
	GetCandles(ctx context.Context, assetId int, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error)
	SaveCandles(ctx context.Context, assetId int, candles []types.Candle) error
}

// Cached serves daily history from the candle cache when it covers the
// requested period and writes upstream results back. Live prices and
// intraday history always go upstream.
type Cached struct {
	upstream Provider
	cache    candleCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewCached(upstream Provider, cache candleCache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{upstream: upstream, cache: cache, logger: logger, now: time.Now}
}

func (c *Cached) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return c.upstream.GetCurrentPrice(ctx, symbol)
}

func (c *Cached) GetHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	start, end, interval, err := periodRange(period, c.now())
	if err != nil {
		return nil, err
	}
	if interval != types.Day {
		return c.upstream.GetHistory(ctx, symbol, period)
	}

	if candles, ok := c.fromCache(ctx, symbol, start, end); ok {
		return candles, nil
	}

	candles, err := c.upstream.GetHistory(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	c.store(ctx, symbol, candles)
	return candles, nil
}

func (c *Cached) fromCache(ctx context.Context, symbol string, start, end time.Time) ([]types.Candle, bool) {
	asset, err := c.cache.GetAssetByTicker(ctx, symbol)
	if err != nil {
		if !errors.Is(err, repository.ErrAssetNotFound) {
			c.logger.Warn("candle cache lookup failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return nil, false
	}
	candles, err := c.cache.GetCandles(ctx, asset.Id, symbol, types.Day, start, end)
	if err != nil {
		if !errors.Is(err, repository.ErrNoCandles) {
			c.logger.Warn("candle cache read failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return nil, false
	}
	first := candles[0].Timestamp
	last := candles[len(candles)-1].Timestamp
	if first.Sub(start) > coverageSlack || end.Sub(last) > coverageSlack {
		return nil, false
	}
	c.logger.Debug("candle cache hit", zap.String("symbol", symbol), zap.Int("candles", len(candles)))
	return candles, true
}

func (c *Cached) store(ctx context.Context, symbol string, candles []types.Candle) {
	asset, err := c.cache.UpsertAsset(ctx, symbol, symbol, types.AssetTypeStock)
	if err != nil {
		c.logger.Warn("candle cache upsert asset failed", zap.String("symbol", symbol), zap.Error(err))
		return
	}
	if err := c.cache.SaveCandles(ctx, asset.Id, candles); err != nil {
		c.logger.Warn("candle cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
}
