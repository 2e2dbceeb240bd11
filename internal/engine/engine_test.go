package engine

import (
	"errors"
	"testing"
	"time"

	"papertrader/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type failingStore struct {
	*ledger.MemoryStore
	fail bool
}

func (s *failingStore) Save(l *ledger.Ledger) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(l)
}

func (s *failingStore) Reset() (*ledger.Ledger, error) {
	if s.fail {
		return nil, errors.New("disk full")
	}
	return s.MemoryStore.Reset()
}

type mockJournal struct {
	trades    []ledger.Transaction
	decisions []Decision
	err       error
}

func (m *mockJournal) RecordTrade(tx ledger.Transaction) error {
	m.trades = append(m.trades, tx)
	return m.err
}

func (m *mockJournal) RecordDecision(d Decision) error {
	m.decisions = append(m.decisions, d)
	return m.err
}

func newTestEngine(cash string) (*Engine, *failingStore) {
	store := &failingStore{MemoryStore: ledger.NewMemoryStore(dec(cash))}
	return NewEngine(store, NewPortfolioConfig(nil, fixedClock(testTime)), nil), store
}

func TestEngineScenario(t *testing.T) {
	e, _ := newTestEngine("100000.00")

	tx, err := e.Buy("AAPL", 10, dec("150.00"))
	require.NoError(t, err)
	assert.Equal(t, ledger.KindBuy, tx.Kind)
	assert.True(t, e.Cash().Equal(dec("98500.00")))
	pos, ok := e.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(10), pos.Shares)
	assert.True(t, pos.AvgPrice.Equal(dec("150")))
	assert.Len(t, e.History(), 1)

	_, err = e.Buy("AAPL", 5, dec("160.00"))
	require.NoError(t, err)
	pos, _ = e.Position("AAPL")
	assert.Equal(t, "153.33", pos.AvgPrice.StringFixed(2))
	assert.True(t, e.Cash().Equal(dec("97700.00")))

	tx, err = e.Sell("AAPL", 15, dec("170.00"))
	require.NoError(t, err)
	assert.Equal(t, ledger.KindSell, tx.Kind)
	assert.True(t, tx.Total.Equal(dec("2550")))
	assert.True(t, e.Cash().Equal(dec("100250.00")))
	_, ok = e.Position("AAPL")
	assert.False(t, ok, "position should be removed when fully sold")

	history := e.History()
	require.Len(t, history, 3)
	assert.Equal(t, ledger.KindSell, history[2].Kind)
	for _, h := range history {
		assert.True(t, h.Commission.IsZero())
		assert.True(t, h.Date.Equal(testTime))
	}
}

func TestEngineCashTracksEveryBuy(t *testing.T) {
	e, _ := newTestEngine("1000")
	buys := []struct {
		qty   int64
		price string
	}{
		{1, "10.10"}, {3, "33.33"}, {2, "0.01"}, {7, "99.99"},
	}
	prev := e.Cash()
	for _, b := range buys {
		_, err := e.Buy("X", b.qty, dec(b.price))
		require.NoError(t, err)
		want := prev.Sub(dec(b.price).Mul(decimal.NewFromInt(b.qty)))
		assert.True(t, e.Cash().Equal(want), "cash = %s, want %s", e.Cash(), want)
		assert.False(t, e.Cash().IsNegative())
		prev = e.Cash()
	}
}

func TestEngineWeightedAverage(t *testing.T) {
	e, _ := newTestEngine("100000")
	fills := []struct {
		qty   int64
		price string
	}{
		{10, "101.17"}, {3, "99.03"}, {7, "120.50"}, {1, "80"},
	}
	sumCost := decimal.Zero
	var sumShares int64
	for _, f := range fills {
		_, err := e.Buy("MSFT", f.qty, dec(f.price))
		require.NoError(t, err)
		sumCost = sumCost.Add(dec(f.price).Mul(decimal.NewFromInt(f.qty)))
		sumShares += f.qty
	}
	pos, _ := e.Position("MSFT")
	want := sumCost.Div(decimal.NewFromInt(sumShares)).Round(2)
	assert.Equal(t, want.StringFixed(2), pos.AvgPrice.Round(2).StringFixed(2))
}

func TestEnginePartialSellKeepsAvgPrice(t *testing.T) {
	e, _ := newTestEngine("100000")
	_, err := e.Buy("TSLA", 10, dec("200"))
	require.NoError(t, err)
	_, err = e.Buy("TSLA", 10, dec("100"))
	require.NoError(t, err)

	_, err = e.Sell("TSLA", 5, dec("300"))
	require.NoError(t, err)

	pos, ok := e.Position("TSLA")
	require.True(t, ok)
	assert.Equal(t, int64(15), pos.Shares)
	assert.True(t, pos.AvgPrice.Equal(dec("150")))
}

func TestEngineRejections(t *testing.T) {
	tests := []struct {
		name    string
		run     func(e *Engine) error
		wantErr error
	}{
		{"buy more than cash", func(e *Engine) error {
			_, err := e.Buy("AAPL", 1000, dec("150"))
			return err
		}, ErrInsufficientFunds},
		{"buy a fraction of a cent over cash", func(e *Engine) error {
			_, err := e.Buy("MSFT", 1, dec("9000.004"))
			return err
		}, ErrInsufficientFunds},
		{"sell without position", func(e *Engine) error {
			_, err := e.Sell("NVDA", 1, dec("10"))
			return err
		}, ErrNoPosition},
		{"sell more than held", func(e *Engine) error {
			_, err := e.Sell("AAPL", 11, dec("10"))
			return err
		}, ErrInsufficientShares},
		{"zero quantity", func(e *Engine) error {
			_, err := e.Buy("AAPL", 0, dec("10"))
			return err
		}, ErrInvalidQuantity},
		{"negative quantity", func(e *Engine) error {
			_, err := e.Sell("AAPL", -1, dec("10"))
			return err
		}, ErrInvalidQuantity},
		{"zero price", func(e *Engine) error {
			_, err := e.Buy("AAPL", 1, decimal.Zero)
			return err
		}, ErrInvalidPrice},
		{"empty symbol", func(e *Engine) error {
			_, err := e.Buy("  ", 1, dec("1"))
			return err
		}, ErrInvalidSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestEngine("10000")
			_, err := e.Buy("AAPL", 10, dec("100"))
			require.NoError(t, err)
			saves := store.Saves()
			before := e.Snapshot()

			err = tt.run(e)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, before, e.Snapshot(), "ledger must be unchanged")
			assert.Len(t, e.History(), 1, "no transaction appended")
			assert.Equal(t, saves, store.Saves(), "nothing persisted")
		})
	}
}

func TestEngineSymbolNormalized(t *testing.T) {
	e, _ := newTestEngine("1000")
	tx, err := e.Buy(" aapl ", 1, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", tx.Symbol)
	_, ok := e.Position("AAPL")
	assert.True(t, ok)
}

func TestEnginePersistenceFailureRollsBack(t *testing.T) {
	e, store := newTestEngine("1000")
	_, err := e.Buy("AAPL", 1, dec("10"))
	require.NoError(t, err)

	store.fail = true
	_, err = e.Buy("AAPL", 1, dec("10"))
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	_, err = e.Sell("AAPL", 1, dec("10"))
	assert.ErrorIs(t, err, ErrPersistenceFailure)

	assert.True(t, e.Cash().Equal(dec("990")))
	pos, _ := e.Position("AAPL")
	assert.Equal(t, int64(1), pos.Shares)
	assert.Len(t, e.History(), 1)

	assert.ErrorIs(t, e.Reset(), ErrPersistenceFailure)
	assert.Len(t, e.History(), 1)

	store.fail = false
	reloaded := store.Load()
	assert.True(t, reloaded.Cash.Equal(dec("990")), "disk and memory agree")
}

func TestEngineReset(t *testing.T) {
	e, store := newTestEngine("1000")
	_, err := e.Buy("AAPL", 1, dec("10"))
	require.NoError(t, err)

	require.NoError(t, e.Reset())
	assert.True(t, e.Cash().Equal(dec("1000")))
	assert.Empty(t, e.Snapshot().Positions)
	assert.Empty(t, e.History())
	assert.Empty(t, store.Load().History)
}

func TestEngineLoadsExistingLedger(t *testing.T) {
	store := ledger.NewMemoryStore(dec("1000"))
	first := NewEngine(store, NewPortfolioConfig(nil, fixedClock(testTime)), nil)
	_, err := first.Buy("AAPL", 2, dec("10"))
	require.NoError(t, err)

	second := NewEngine(store, nil, nil)
	assert.True(t, second.Cash().Equal(dec("980")))
	assert.Len(t, second.History(), 1)
}

func TestEngineCommissionHook(t *testing.T) {
	store := ledger.NewMemoryStore(dec("10000"))
	e := NewEngine(store, NewPortfolioConfig(IBKRNetherlands, fixedClock(testTime)), nil)

	tx, err := e.Buy("ASML", 10, dec("100"))
	require.NoError(t, err)
	assert.True(t, tx.Total.Equal(dec("1000")))
	assert.True(t, tx.Commission.Equal(dec("1.70")))
	assert.True(t, e.Cash().Equal(dec("8998.30")))

	tx, err = e.Sell("ASML", 10, dec("100"))
	require.NoError(t, err)
	assert.True(t, tx.Commission.Equal(dec("1.70")))
	assert.True(t, e.Cash().Equal(dec("9996.60")))
}

func TestEngineJournal(t *testing.T) {
	e, _ := newTestEngine("1000")
	j := &mockJournal{err: errors.New("journal down")}
	e.SetJournal(j)

	_, err := e.AutoBuy("AAPL", 1, dec("10"))
	require.NoError(t, err, "journal failures never fail a trade")
	require.Len(t, j.trades, 1)
	assert.Equal(t, ledger.KindAutoBuy, j.trades[0].Kind)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10", 10, false},
		{" 3 ", 3, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"1.5", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineBuyUsesExactCost(t *testing.T) {
	e, _ := newTestEngine("100.00")
	_, err := e.Buy("AAPL", 1, dec("100.004"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, e.Cash().Equal(dec("100.00")))
	assert.Empty(t, e.History())

	e, _ = newTestEngine("200.00")
	tx, err := e.Buy("AAPL", 3, dec("33.3347"))
	require.NoError(t, err)
	assert.True(t, tx.Total.Equal(dec("100.0041")), "total is shares × price, got %s", tx.Total)
	assert.True(t, e.Cash().Equal(dec("100.00")), "cash is rounded to the cent, got %s", e.Cash())
}
