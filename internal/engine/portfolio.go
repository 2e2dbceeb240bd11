package engine

import (
	"fmt"
	"time"

	"papertrader/internal/ledger"

	"github.com/shopspring/decimal"
)

const (
	cashPlaces     = 2
	avgPricePlaces = 6
)

// applyBuy mutates l in place. Callers pass a clone and only keep it once
// it has been persisted.
func applyBuy(l *ledger.Ledger, kind ledger.Kind, symbol string, quantity int64, price decimal.Decimal, fee FeeFunc, now time.Time) (ledger.Transaction, error) {
	qty := decimal.NewFromInt(quantity)
	total, commission, cost := buyCost(quantity, price, fee)

	if cost.GreaterThan(l.Cash) {
		return ledger.Transaction{}, fmt.Errorf("%w: %d %s costs %s, cash is %s",
			ErrInsufficientFunds, quantity, symbol, cost.String(), l.Cash.StringFixed(cashPlaces))
	}

	pos, ok := l.Positions[symbol]
	if ok {
		pos.AvgPrice = weightedAvg(pos.AvgPrice, decimal.NewFromInt(pos.Shares), price, qty).Round(avgPricePlaces)
		pos.Shares += quantity
	} else {
		pos = ledger.Position{Shares: quantity, AvgPrice: price}
	}
	l.Positions[symbol] = pos
	l.Cash = l.Cash.Sub(cost).Round(cashPlaces)

	return appendTransaction(l, kind, symbol, quantity, price, total, commission, now), nil
}

func applySell(l *ledger.Ledger, kind ledger.Kind, symbol string, quantity int64, price decimal.Decimal, fee FeeFunc, now time.Time) (ledger.Transaction, error) {
	pos, ok := l.Positions[symbol]
	if !ok {
		return ledger.Transaction{}, fmt.Errorf("%w: you don't own any shares of %s", ErrNoPosition, symbol)
	}
	if quantity > pos.Shares {
		return ledger.Transaction{}, fmt.Errorf("%w: you only have %d shares of %s", ErrInsufficientShares, pos.Shares, symbol)
	}

	total := price.Mul(decimal.NewFromInt(quantity))
	commission := fee(total).Round(cashPlaces)
	newCash := l.Cash.Add(total).Sub(commission).Round(cashPlaces)
	if newCash.IsNegative() {
		return ledger.Transaction{}, fmt.Errorf("%w: commission %s exceeds available cash", ErrInsufficientFunds, commission.StringFixed(cashPlaces))
	}

	if quantity == pos.Shares {
		delete(l.Positions, symbol)
	} else {
		pos.Shares -= quantity
		l.Positions[symbol] = pos
	}
	l.Cash = newCash

	return appendTransaction(l, kind, symbol, quantity, price, total, commission, now), nil
}

// buyCost returns the trade value shares × price, the commission on it,
// and the exact cash the buy needs. Only the resulting cash balance is
// rounded to the cent.
func buyCost(quantity int64, price decimal.Decimal, fee FeeFunc) (total, commission, cost decimal.Decimal) {
	total = price.Mul(decimal.NewFromInt(quantity))
	commission = fee(total).Round(cashPlaces)
	return total, commission, total.Add(commission)
}

func appendTransaction(l *ledger.Ledger, kind ledger.Kind, symbol string, quantity int64, price, total, commission decimal.Decimal, now time.Time) ledger.Transaction {
	tx := ledger.Transaction{
		Date:       now.Local().Truncate(time.Second),
		Kind:       kind,
		Symbol:     symbol,
		Shares:     quantity,
		Price:      price,
		Total:      total,
		Commission: commission,
	}
	l.History = append(l.History, tx)
	return tx
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
