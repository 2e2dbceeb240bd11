package engine

import (
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

type PortfolioConfig struct {
	fee   FeeFunc
	clock func() time.Time
}

// NewPortfolioConfig builds the engine settings. A nil fee charges no
// commission and a nil clock uses time.Now.
func NewPortfolioConfig(fee FeeFunc, clock func() time.Time) *PortfolioConfig {
	if fee == nil {
		fee = NoCommission
	}
	if clock == nil {
		clock = time.Now
	}
	return &PortfolioConfig{
		fee:   fee,
		clock: clock,
	}
}

const (
	DefaultDailyBuyLimit  = 10
	DefaultDailySellLimit = 10
)

// AutoTradeConfig is the per-session auto-trading setup. It is not persisted.
type AutoTradeConfig struct {
	QuantityPerTrade      int64
	MaxInvestmentPerTrade decimal.Decimal
	Frequency             types.Frequency
	DailyBuyLimit         int
	DailySellLimit        int
}

func NewAutoTradeConfig(quantity int64, maxInvestment decimal.Decimal, frequency types.Frequency) AutoTradeConfig {
	if frequency == "" {
		frequency = types.DefaultFrequency
	}
	return AutoTradeConfig{
		QuantityPerTrade:      quantity,
		MaxInvestmentPerTrade: maxInvestment,
		Frequency:             frequency,
		DailyBuyLimit:         DefaultDailyBuyLimit,
		DailySellLimit:        DefaultDailySellLimit,
	}
}

// CheckInterval is how often the signal is evaluated.
func (c AutoTradeConfig) CheckInterval() time.Duration {
	if d, ok := types.FrequencyToTime[c.Frequency]; ok {
		return d
	}
	return types.FrequencyToTime[types.DefaultFrequency]
}

type ReplayConfig struct {
	initialCash  decimal.Decimal
	autoTrade    AutoTradeConfig
	fee          FeeFunc
	warmup       int
	showProgress bool
}

// NewReplayConfig configures a replay. The first warmup candles only feed
// the recommender; no trades are evaluated on them.
func NewReplayConfig(initialCash decimal.Decimal, autoTrade AutoTradeConfig, fee FeeFunc, warmup int, showProgress bool) *ReplayConfig {
	if fee == nil {
		fee = NoCommission
	}
	return &ReplayConfig{
		initialCash:  initialCash,
		autoTrade:    autoTrade,
		fee:          fee,
		warmup:       warmup,
		showProgress: showProgress,
	}
}
