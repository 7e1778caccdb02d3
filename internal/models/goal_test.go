package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGoal_ApplyProgress(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		target        string
		delta         string
		wantCurrent   string
		wantStatus    string
		wantCompleted bool
	}{
		{"partial progress", "0", "1000.00", "500.00", "500.00", GoalStatusInProgress, false},
		{"capped at target", "500.00", "1000.00", "600.00", "1000.00", GoalStatusCompleted, true},
		{"exactly target", "400.00", "1000.00", "600.00", "1000.00", GoalStatusCompleted, true},
		{"negative floored at zero", "100.00", "1000.00", "-250.00", "0", GoalStatusInProgress, false},
		{"withdraw from completed", "1000.00", "1000.00", "-0.01", "999.99", GoalStatusInProgress, false},
		{"zero delta keeps status", "20.00", "100.00", "0", "20.00", GoalStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Goal{
				CurrentAmount: dec(tt.current),
				TargetAmount:  dec(tt.target),
				Status:        GoalStatusInProgress,
			}
			if g.CurrentAmount.Equal(g.TargetAmount) {
				g.Status = GoalStatusCompleted
			}

			completed := g.ApplyProgress(dec(tt.delta))

			assert.True(t, dec(tt.wantCurrent).Equal(g.CurrentAmount), "current %s", g.CurrentAmount)
			assert.Equal(t, tt.wantStatus, g.Status)
			assert.Equal(t, tt.wantCompleted, completed)
		})
	}
}

func TestGoal_ApplyProgress_Invariants(t *testing.T) {
	deltas := []string{"250.50", "-1000", "999.99", "0.01", "5000", "-0.01", "-1", "12.25"}
	g := &Goal{TargetAmount: dec("1000.00"), CurrentAmount: decimal.Zero, Status: GoalStatusInProgress}

	for _, d := range deltas {
		g.ApplyProgress(dec(d))

		assert.False(t, g.CurrentAmount.IsNegative())
		assert.True(t, g.CurrentAmount.LessThanOrEqual(g.TargetAmount))
		assert.Equal(t, g.CurrentAmount.Equal(g.TargetAmount), g.IsCompleted())
	}
}

func TestGoal_ReevaluateStatus(t *testing.T) {
	g := &Goal{TargetAmount: dec("1000"), CurrentAmount: dec("600"), Status: GoalStatusInProgress}

	g.TargetAmount = dec("500")
	g.ReevaluateStatus()
	assert.Equal(t, GoalStatusCompleted, g.Status)
	assert.True(t, dec("500").Equal(g.CurrentAmount))

	g.TargetAmount = dec("800")
	g.ReevaluateStatus()
	assert.Equal(t, GoalStatusInProgress, g.Status)
}

func TestGoal_ProgressPercentage(t *testing.T) {
	g := &Goal{TargetAmount: dec("300"), CurrentAmount: dec("100")}
	assert.Equal(t, "33.33", g.ProgressPercentage().StringFixed(2))

	g.CurrentAmount = dec("300")
	assert.Equal(t, "100.00", g.ProgressPercentage().StringFixed(2))

	g.TargetAmount = decimal.Zero
	assert.True(t, g.ProgressPercentage().IsZero())
}

func TestGoal_Validate(t *testing.T) {
	today := time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)

	valid := Goal{Title: "  Vacation ", TargetAmount: dec("1500.00"), Deadline: today}
	require.NoError(t, valid.Validate(today))
	assert.Equal(t, "Vacation", valid.Title)

	invalid := Goal{Title: "   ", TargetAmount: dec("-1"), Deadline: today.AddDate(0, 0, -1)}
	err := invalid.Validate(today)
	require.Error(t, err)

	var fields ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "Title cannot be empty", fields["title"])
	assert.Equal(t, "Target amount must be greater than zero", fields["target_amount"])
	assert.Equal(t, "Deadline cannot be in the past", fields["deadline"])
}

func TestGoal_DaysUntilDeadline(t *testing.T) {
	now := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	g := &Goal{Deadline: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 5, g.DaysUntilDeadline(now))

	g.Deadline = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, g.DaysUntilDeadline(now))
}
