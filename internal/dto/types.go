package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value as the client sent it. It unmarshals from a
// JSON number or string and keeps the raw text so non-numeric input can be
// reported as a field error instead of a decode failure.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}

	*a = Amount(data)
	return nil
}

// Decimal parses the amount, rejecting magnitudes no money column can hold.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return models.ParseMoney(string(a))
}

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true when the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// money renders an amount with exactly two decimal places
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
