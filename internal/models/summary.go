package models

import "github.com/shopspring/decimal"

// CategoryTotal is one row of the expenses-by-category breakdown.
type CategoryTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// TypeTotals holds income and expense sums over some period.
type TypeTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (t TypeTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// TrendPoint is one month of the trailing trend, Month formatted YYYY-MM.
type TrendPoint struct {
	Month   string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type MonthTotals struct {
	Name     string          `json:"name"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type PreviousMonth struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

type TransactionSummary struct {
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	Balance         decimal.Decimal `json:"balance"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	MonthlyChange   decimal.Decimal `json:"monthly_change"`
	CurrentMonth    MonthTotals     `json:"current_month"`
	PreviousMonth   PreviousMonth   `json:"previous_month"`
}

// MonthlyChange is the percentage change from previous to current net,
// rounded to 2 places. It is 0 whenever the previous net is exactly 0.
func MonthlyChange(currentNet, previousNet decimal.Decimal) decimal.Decimal {
	if previousNet.IsZero() {
		return decimal.Zero
	}
	return currentNet.Sub(previousNet).Mul(hundred).DivRound(previousNet, 2)
}

type DashboardSummary struct {
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Balance     decimal.Decimal `json:"balance"`
	ActiveGoals int64           `json:"active_goals"`
}

type DashboardStats struct {
	Summary DashboardSummary `json:"summary"`
}
