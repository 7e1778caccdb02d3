package models

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationErrors maps a field name to its validation message. It is
// returned by the Validate methods and rendered as a field-level error map.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when no field failed.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

const (
	maxMoneyInputLen = 40
	maxMoneyExponent = 18
	minMoneyExponent = -18
)

// ErrMalformedMoney is returned by ParseMoney for text that is not a
// decimal number or whose magnitude no money column could hold.
var ErrMalformedMoney = errors.New("malformed money amount")

// ParseMoney is the single entry point for amounts coming from clients.
// Input longer than maxMoneyInputLen or with an exponent outside
// [minMoneyExponent, maxMoneyExponent] is rejected.
func ParseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxMoneyInputLen {
		return decimal.Zero, ErrMalformedMoney
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !MoneyInRange(d) {
		return decimal.Zero, ErrMalformedMoney
	}
	return d, nil
}

// MoneyInRange reports whether d's exponent lies within the accepted range.
func MoneyInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= minMoneyExponent && exp <= maxMoneyExponent
}

// checkMoney validates an amount against a decimal(precision, 2) column.
func checkMoney(errs ValidationErrors, field string, amount decimal.Decimal, precision int32, allowZero bool) {
	switch {
	case !MoneyInRange(amount):
		errs.Add(field, "A valid number is required.")
	case !allowZero && !amount.IsPositive():
		errs.Add(field, "Ensure this value is greater than 0.")
	case allowZero && amount.IsNegative():
		errs.Add(field, "Ensure this value is greater than or equal to 0.")
	case !amount.Equal(amount.Round(2)):
		errs.Add(field, "Ensure that there are no more than 2 decimal places.")
	case amount.Abs().GreaterThanOrEqual(decimal.New(1, precision-2)):
		errs.Add(field, "Ensure that there are no more than "+decimal.NewFromInt32(precision).String()+" digits in total.")
	}
}

// RoundMoney rounds to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	if !MoneyInRange(d) {
		return d
	}
	return d.Round(2)
}
