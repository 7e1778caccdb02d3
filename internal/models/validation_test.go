package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "42.50", want: "42.5"},
		{raw: " -0.01 ", want: "-0.01"},
		{raw: "1e3", want: "1000"},
		{raw: "1.005", want: "1.005"},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1e300000000", wantErr: true},
		{raw: "1e-300000000", wantErr: true},
		{raw: "1e19", wantErr: true},
		{raw: "12345678901234567890123456789012345678901", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMoney)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestGoal_ApplyProgress_OutOfRangeDelta(t *testing.T) {
	g := &Goal{TargetAmount: dec("1000.00"), CurrentAmount: dec("250.00"), Status: GoalStatusInProgress}

	completed := g.ApplyProgress(decimal.New(1, 300000000))

	assert.False(t, completed)
	assert.True(t, dec("250.00").Equal(g.CurrentAmount))
	assert.Equal(t, GoalStatusInProgress, g.Status)
}

func TestGoal_Validate_OutOfRangeTarget(t *testing.T) {
	g := &Goal{Title: "Trip", TargetAmount: decimal.New(1, 300000000), Deadline: time.Now().AddDate(0, 1, 0)}

	var fields ValidationErrors
	require.ErrorAs(t, g.Validate(time.Now()), &fields)
	assert.Equal(t, "A valid number is required.", fields["target_amount"])
}
