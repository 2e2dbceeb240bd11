package cli

import (
	"fmt"
	"strings"

	"papertrader/internal/engine"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shopspring/decimal"
)

// prompter asks the user for missing input. Tests replace it.
type prompter interface {
	Confirm(message string) (bool, error)
	Quantity(message string) (int64, error)
	Amount(message string) (decimal.Decimal, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Confirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

func (surveyPrompter) Quantity(message string) (int64, error) {
	var raw string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    "A positive whole number of shares",
	}, &raw, survey.WithValidator(func(val interface{}) error {
		_, err := engine.ParseQuantity(val.(string))
		return err
	}))
	if err != nil {
		return 0, err
	}
	return engine.ParseQuantity(raw)
}

func (surveyPrompter) Amount(message string) (decimal.Decimal, error) {
	var raw string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    "A positive dollar amount, e.g. 1000 or 2500.50",
	}, &raw, survey.WithValidator(func(val interface{}) error {
		_, err := parseAmount(val.(string))
		return err
	}))
	if err != nil {
		return decimal.Zero, err
	}
	return parseAmount(raw)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be a positive number: %q", s)
	}
	return d, nil
}
