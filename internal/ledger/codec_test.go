package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLedger() *Ledger {
	l := New(decimal.RequireFromString("97700.00"))
	l.Positions["AAPL"] = Position{Shares: 15, AvgPrice: decimal.RequireFromString("153.333333")}
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	l.History = []Transaction{
		{Date: date, Kind: KindBuy, Symbol: "AAPL", Shares: 10, Price: decimal.RequireFromString("150"), Total: decimal.RequireFromString("1500"), Commission: decimal.Zero},
		{Date: date.Add(time.Minute), Kind: KindAutoBuy, Symbol: "AAPL", Shares: 5, Price: decimal.RequireFromString("160"), Total: decimal.RequireFromString("800"), Commission: decimal.Zero},
	}
	return l
}

func TestMarshalRoundTrip(t *testing.T) {
	l := sampleLedger()

	data, err := Marshal(l)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	again, err := Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	assert.True(t, got.Cash.Equal(l.Cash))
	assert.Equal(t, l.Positions["AAPL"].Shares, got.Positions["AAPL"].Shares)
	assert.True(t, got.Positions["AAPL"].AvgPrice.Equal(l.Positions["AAPL"].AvgPrice))
	require.Len(t, got.History, 2)
	assert.Equal(t, KindAutoBuy, got.History[1].Kind)
	assert.True(t, got.History[0].Date.Equal(l.History[0].Date))
}

func TestMarshalWireFormat(t *testing.T) {
	data, err := Marshal(sampleLedger())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"cash_balance": 97700`)
	assert.Contains(t, s, `"avg_price": 153.333333`)
	assert.Contains(t, s, `"type": "AUTO BUY"`)
	assert.Contains(t, s, `"date": "2024-03-01 09:30:00"`)
}

func TestUnmarshalAcceptsLegacyFloats(t *testing.T) {
	data := []byte(`{
    "cash_balance": 98500.0,
    "stocks": {"MSFT": {"shares": 10, "avg_price": 150.0}},
    "transaction_history": [
        {"date": "2024-01-02 10:00:00", "type": "BUY", "symbol": "MSFT", "shares": 10, "price": 150.0, "total": 1500.0, "commission": 0}
    ]
}`)
	l, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, l.Cash.Equal(decimal.NewFromInt(98500)))
	assert.Equal(t, int64(10), l.Positions["MSFT"].Shares)
	assert.Equal(t, KindBuy, l.History[0].Kind)
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"missing cash", `{"stocks": {}}`},
		{"negative cash", `{"cash_balance": -1}`},
		{"zero share position", `{"cash_balance": 1, "stocks": {"A": {"shares": 0, "avg_price": 1}}}`},
		{"fractional shares", `{"cash_balance": 1, "stocks": {"A": {"shares": 1.5, "avg_price": 1}}}`},
		{"unknown kind", `{"cash_balance": 1, "transaction_history": [{"date": "2024-01-02 10:00:00", "type": "SHORT", "symbol": "A", "shares": 1, "price": 1, "total": 1, "commission": 0}]}`},
		{"bad date", `{"cash_balance": 1, "transaction_history": [{"date": "yesterday", "type": "BUY", "symbol": "A", "shares": 1, "price": 1, "total": 1, "commission": 0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if !errors.Is(err, ErrMalformedLedger) {
				t.Errorf("Unmarshal() error = %v, wantErr %v", err, ErrMalformedLedger)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := sampleLedger()
	c := l.Clone()

	c.Cash = decimal.Zero
	c.Positions["MSFT"] = Position{Shares: 1, AvgPrice: decimal.NewFromInt(1)}
	delete(c.Positions, "AAPL")
	c.History = append(c.History, Transaction{Kind: KindSell})

	assert.True(t, l.Cash.Equal(decimal.RequireFromString("97700")))
	assert.Contains(t, l.Positions, "AAPL")
	assert.NotContains(t, l.Positions, "MSFT")
	assert.Len(t, l.History, 2)
}

func TestKind(t *testing.T) {
	assert.True(t, KindAutoSell.IsAuto())
	assert.False(t, KindSell.IsAuto())
	assert.True(t, KindAutoBuy.IsBuy())
	assert.Equal(t, "SELL", string(KindAutoSell.Side()))
	assert.False(t, Kind("AUTO_BUY").Valid())
}
