package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"papertrader/internal/engine"
	"papertrader/internal/ledger"
	"papertrader/types"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "papertrader.yaml"
	envPrefix   = "PAPERTRADER_"
)

type Config struct {
	Ledger     LedgerConfig     `yaml:"ledger"`
	Quotes     QuotesConfig     `yaml:"quotes"`
	AutoTrade  AutoTradeConfig  `yaml:"autotrade"`
	Indicators IndicatorsConfig `yaml:"indicators"`
	Journal    JournalConfig    `yaml:"journal"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type LedgerConfig struct {
	Path           string          `yaml:"path"`
	InitialBalance decimal.Decimal `yaml:"initial_balance"`
	// Commission names a fee schedule. "none" (the default) charges nothing.
	// "ibkr-nl" is an illustrative fixed-rate broker schedule for trying the
	// fee hook; it does not model what a US broker would charge.
	Commission string `yaml:"commission"`
}

type QuotesConfig struct {
	Provider      string        `yaml:"provider"`
	FinnhubAPIKey string        `yaml:"finnhub_api_key"`
	FinnhubURL    string        `yaml:"finnhub_url"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	// CacheDSN is a Postgres DSN for the candle cache. Empty disables it.
	CacheDSN string `yaml:"cache_dsn"`
}

// AutoTradeConfig holds auto-trade defaults. Quantity and MaxInvestment
// are unset by default so the autotrade command prompts for them.
type AutoTradeConfig struct {
	Quantity        int64           `yaml:"quantity"`
	MaxInvestment   decimal.Decimal `yaml:"max_investment"`
	Frequency       types.Frequency `yaml:"frequency"`
	RefreshInterval time.Duration   `yaml:"refresh_interval"`
	DailyBuyLimit   int             `yaml:"daily_buy_limit"`
	DailySellLimit  int             `yaml:"daily_sell_limit"`
	Strategy        string          `yaml:"strategy"`
}

type IndicatorsConfig struct {
	MA   bool `yaml:"ma"`
	RSI  bool `yaml:"rsi"`
	MACD bool `yaml:"macd"`
}

type JournalConfig struct {
	// Path of the SQLite journal. Empty disables journaling.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Tracing     bool   `yaml:"tracing"`
}

const (
	ProviderYahoo   = "yahoo"
	ProviderFinnhub = "finnhub"

	StrategyTechnical = "technical"
	StrategyDonchian  = "donchian"
)

func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path:           "portfolio.json",
			InitialBalance: ledger.DefaultInitialBalance,
			Commission:     "none",
		},
		Quotes: QuotesConfig{
			Provider:   ProviderYahoo,
			FinnhubURL: "https://finnhub.io/api/v1",
			Timeout:    10 * time.Second,
			Retries:    3,
		},
		AutoTrade: AutoTradeConfig{
			Frequency:       types.DefaultFrequency,
			RefreshInterval: time.Minute,
			DailyBuyLimit:   engine.DefaultDailyBuyLimit,
			DailySellLimit:  engine.DefaultDailySellLimit,
			Strategy:        StrategyTechnical,
		},
		Indicators: IndicatorsConfig{MA: true, RSI: true, MACD: true},
		Journal:    JournalConfig{Path: "journal.db"},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then .env, then
// PAPERTRADER_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	_ = godotenv.Load()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	if val := getenv("LEDGER_PATH"); val != "" {
		c.Ledger.Path = val
	}
	if val := getenv("INITIAL_BALANCE"); val != "" {
		d, err := decimal.NewFromString(val)
		if err != nil {
			return fmt.Errorf("%sINITIAL_BALANCE: %w", envPrefix, err)
		}
		c.Ledger.InitialBalance = d
	}
	if val := getenv("COMMISSION"); val != "" {
		c.Ledger.Commission = val
	}
	if val := getenv("QUOTE_PROVIDER"); val != "" {
		c.Quotes.Provider = val
	}
	if val := getenv("FINNHUB_API_KEY"); val != "" {
		c.Quotes.FinnhubAPIKey = val
	}
	if val := getenv("CACHE_DSN"); val != "" {
		c.Quotes.CacheDSN = val
	}
	if val := getenv("FREQUENCY"); val != "" {
		c.AutoTrade.Frequency = types.Frequency(val)
	}
	if val := getenv("STRATEGY"); val != "" {
		c.AutoTrade.Strategy = val
	}
	if val := getenv("JOURNAL_PATH"); val != "" {
		c.Journal.Path = val
	}
	if val := getenv("LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := getenv("DEBUG"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%sDEBUG: %w", envPrefix, err)
		}
		c.Logging.Development = b
	}
	if val := getenv("TRACING"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%sTRACING: %w", envPrefix, err)
		}
		c.Logging.Tracing = b
	}
	return nil
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}

func (c *Config) Validate() error {
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}
	if c.Ledger.InitialBalance.IsNegative() {
		return fmt.Errorf("ledger.initial_balance cannot be negative")
	}
	if _, err := engine.FeeSchedule(c.Ledger.Commission); err != nil {
		return fmt.Errorf("ledger.commission: %w", err)
	}
	switch c.Quotes.Provider {
	case ProviderYahoo:
	case ProviderFinnhub:
		if c.Quotes.FinnhubAPIKey == "" {
			return fmt.Errorf("quotes.finnhub_api_key is required for the finnhub provider")
		}
	default:
		return fmt.Errorf("quotes.provider must be %q or %q, got %q", ProviderYahoo, ProviderFinnhub, c.Quotes.Provider)
	}
	if c.Quotes.Timeout <= 0 {
		return fmt.Errorf("quotes.timeout must be positive")
	}
	if c.Quotes.Retries < 0 {
		return fmt.Errorf("quotes.retries cannot be negative")
	}
	if _, ok := types.FrequencyToTime[c.AutoTrade.Frequency]; !ok {
		return fmt.Errorf("autotrade.frequency %q is not one of %v", c.AutoTrade.Frequency, types.Frequencies)
	}
	if c.AutoTrade.RefreshInterval <= 0 {
		return fmt.Errorf("autotrade.refresh_interval must be positive")
	}
	if c.AutoTrade.DailyBuyLimit < 0 || c.AutoTrade.DailySellLimit < 0 {
		return fmt.Errorf("autotrade daily limits cannot be negative")
	}
	switch c.AutoTrade.Strategy {
	case StrategyTechnical, StrategyDonchian:
	default:
		return fmt.Errorf("autotrade.strategy must be %q or %q, got %q", StrategyTechnical, StrategyDonchian, c.AutoTrade.Strategy)
	}
	return nil
}

// AutoTradeDefaults returns the configured auto-trade setup. Zero or
// missing fields are left for the caller to prompt for.
func (c *Config) AutoTradeDefaults() engine.AutoTradeConfig {
	at := engine.NewAutoTradeConfig(c.AutoTrade.Quantity, c.AutoTrade.MaxInvestment, c.AutoTrade.Frequency)
	at.DailyBuyLimit = c.AutoTrade.DailyBuyLimit
	at.DailySellLimit = c.AutoTrade.DailySellLimit
	return at
}
