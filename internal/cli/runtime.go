package cli

import (
	"context"
	"os"

	"papertrader/internal/app"
	"papertrader/internal/config"
	"papertrader/internal/engine"
	"papertrader/internal/journal"
	"papertrader/internal/ledger"
	"papertrader/internal/logger"
	"papertrader/internal/quotes"
	"papertrader/internal/repository"
	"papertrader/strategies/donchian"
	"papertrader/strategies/technical"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime holds what commands share: configuration and lazily opened
// collaborators. Anything set before init is kept, which is how tests
// inject fakes.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider quotes.Provider
	store    ledger.Store
	journal  *journal.SQLite
	prompt   prompter

	closers []func()
}

type Option func(*runtime)

func WithConfig(cfg *config.Config) Option {
	return func(rt *runtime) { rt.cfg = cfg }
}

func WithProvider(p quotes.Provider) Option {
	return func(rt *runtime) { rt.provider = p }
}

func WithStore(s ledger.Store) Option {
	return func(rt *runtime) { rt.store = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(rt *runtime) { rt.logger = l }
}

func withPrompter(p prompter) Option {
	return func(rt *runtime) { rt.prompt = p }
}

func (rt *runtime) init(configPath string) error {
	if rt.cfg == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		rt.cfg = cfg
	}
	if rt.logger == nil {
		l, err := logger.New(logger.Config{
			Level:       rt.cfg.Logging.Level,
			Development: rt.cfg.Logging.Development,
		})
		if err != nil {
			return err
		}
		rt.logger = l
		rt.closers = append(rt.closers, func() { _ = l.Sync() })
	}
	if rt.prompt == nil {
		rt.prompt = surveyPrompter{}
	}

	shutdown, err := logger.InitTracer(rt.cfg.Logging.Tracing, os.Stderr)
	if err != nil {
		rt.logger.Warn("tracing disabled", zap.Error(err))
		return nil
	}
	rt.closers = append(rt.closers, func() { _ = shutdown(context.Background()) })
	return nil
}

type runFunc func(cmd *cobra.Command, args []string) error

// wrap releases the runtime's collaborators once the command finishes,
// whether or not it failed.
func (rt *runtime) wrap(fn runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		defer rt.close()
		return fn(cmd, args)
	}
}

// close releases collaborators in reverse order of opening.
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func (rt *runtime) quotes(ctx context.Context) quotes.Provider {
	if rt.provider != nil {
		return rt.provider
	}

	retry := quotes.DefaultRetryConfig()
	retry.MaxRetries = rt.cfg.Quotes.Retries

	var p quotes.Provider
	switch rt.cfg.Quotes.Provider {
	case config.ProviderFinnhub:
		p = quotes.NewFinnhub(rt.cfg.Quotes.FinnhubURL, rt.cfg.Quotes.FinnhubAPIKey, rt.cfg.Quotes.Timeout, retry)
	default:
		p = quotes.NewYahoo(retry)
	}

	if dsn := rt.cfg.Quotes.CacheDSN; dsn != "" {
		db, err := repository.NewDatabase(ctx, dsn)
		if err == nil {
			err = db.EnsureSchema(ctx)
			if err != nil {
				db.Close()
			}
		}
		if err != nil {
			rt.logger.Warn("candle cache unavailable", zap.Error(err))
		} else {
			rt.closers = append(rt.closers, db.Close)
			p = quotes.NewCached(p, db, rt.logger)
		}
	}

	rt.provider = p
	return p
}

func (rt *runtime) ledgerStore() ledger.Store {
	if rt.store == nil {
		rt.store = ledger.NewFileStore(rt.cfg.Ledger.Path, rt.cfg.Ledger.InitialBalance, rt.logger)
	}
	return rt.store
}

// openJournal returns nil when journaling is disabled or the database
// cannot be opened; trading goes on without it.
func (rt *runtime) openJournal() *journal.SQLite {
	if rt.journal != nil || rt.cfg.Journal.Path == "" {
		return rt.journal
	}
	j, err := journal.NewSQLite(rt.cfg.Journal.Path)
	if err != nil {
		rt.logger.Warn("journal unavailable", zap.String("path", rt.cfg.Journal.Path), zap.Error(err))
		return nil
	}
	rt.journal = j
	rt.closers = append(rt.closers, func() { _ = j.Close() })
	return j
}

func (rt *runtime) engine() (*engine.Engine, error) {
	fee, err := engine.FeeSchedule(rt.cfg.Ledger.Commission)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(rt.ledgerStore(), engine.NewPortfolioConfig(fee, nil), rt.logger)
	if j := rt.openJournal(); j != nil {
		eng.SetJournal(j)
	}
	return eng, nil
}

func (rt *runtime) recommender(strategy string) app.Recommender {
	if strategy == config.StrategyDonchian {
		return donchian.NewRecommender(donchian.DefaultLookback)
	}
	return technical.NewRecommender(technical.Indicators{
		MA:   rt.cfg.Indicators.MA,
		RSI:  rt.cfg.Indicators.RSI,
		MACD: rt.cfg.Indicators.MACD,
	})
}
