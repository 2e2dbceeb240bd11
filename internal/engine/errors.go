package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientShares     = errors.New("insufficient shares")
	ErrNoPosition             = errors.New("no position held")
	ErrInvalidQuantity        = errors.New("quantity must be a positive whole number")
	ErrInvalidPrice           = errors.New("price must be positive")
	ErrInvalidSymbol          = errors.New("invalid symbol")
	ErrInvalidAutoTradeConfig = errors.New("invalid auto-trade config")
	ErrPersistenceFailure     = errors.New("could not persist ledger")
)

// ParseQuantity parses user input as a share count.
func ParseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || q <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return q, nil
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: symbol cannot be empty", ErrInvalidSymbol)
	}
	if len(s) > 10 {
		return "", fmt.Errorf("%w: symbol too long: %s", ErrInvalidSymbol, s)
	}
	return s, nil
}
