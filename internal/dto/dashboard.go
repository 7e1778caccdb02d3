package dto

import "finance-tracker/internal/models"

type DashboardSummaryResponse struct {
	Income      string `json:"income"`
	Expenses    string `json:"expenses"`
	Balance     string `json:"balance"`
	ActiveGoals int64  `json:"active_goals"`
}

type DashboardResponse struct {
	Summary DashboardSummaryResponse `json:"summary"`
}

func NewDashboardResponse(stats *models.DashboardStats) DashboardResponse {
	return DashboardResponse{
		Summary: DashboardSummaryResponse{
			Income:      money(stats.Summary.Income),
			Expenses:    money(stats.Summary.Expenses),
			Balance:     money(stats.Summary.Balance),
			ActiveGoals: stats.Summary.ActiveGoals,
		},
	}
}
