package dto

import (
	"time"

	"finance-tracker/internal/models"
)

// TransactionRequest creates or fully replaces a transaction. Category is a
// category id or null.
type TransactionRequest struct {
	Date        string  `json:"date" validate:"required,iso_date"`
	Description string  `json:"description" validate:"required,max=255"`
	Amount      Amount  `json:"amount" validate:"required,money"`
	Type        string  `json:"type" validate:"required,entry_type"`
	Category    *string `json:"category" validate:"omitempty,uuid"`
}

// TransactionPatch changes only the fields present. Category may be set to
// null to clear it.
type TransactionPatch struct {
	Date        *string        `json:"date" validate:"omitempty,iso_date"`
	Description *string        `json:"description" validate:"omitempty,max=255"`
	Amount      *Amount        `json:"amount" validate:"omitempty,money"`
	Type        *string        `json:"type" validate:"omitempty,entry_type"`
	Category    OptionalString `json:"category"`
}

// TransactionListQuery holds the listing filters, search, ordering and paging
type TransactionListQuery struct {
	Type      string `query:"type" validate:"omitempty,entry_type"`
	Category  string `query:"category" validate:"omitempty,uuid"`
	Date      string `query:"date" validate:"omitempty,iso_date"`
	StartDate string `query:"start_date" validate:"omitempty,iso_date"`
	EndDate   string `query:"end_date" validate:"omitempty,iso_date"`
	Search    string `query:"search" validate:"max=255"`
	Ordering  string `query:"ordering" validate:"omitempty,oneof=date -date amount -amount"`
	Page      int    `query:"page" validate:"gte=0"`
	PageSize  int    `query:"page_size" validate:"gte=0"`
}

type TransactionResponse struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Description  string    `json:"description"`
	Amount       string    `json:"amount"`
	Type         string    `json:"type"`
	Category     *string   `json:"category"`
	CategoryName *string   `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Date:        t.Date.Format(models.DateLayout),
		Description: t.Description,
		Amount:      money(t.Amount),
		Type:        t.Type,
		CreatedAt:   t.CreatedAt,
	}

	if t.CategoryID != nil {
		id := t.CategoryID.String()
		resp.Category = &id
	}
	if name := t.CategoryName(); name != "" {
		resp.CategoryName = &name
	}

	return resp
}

func NewTransactionResponses(transactions []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

// MonthTotalsResponse is the current month block of the summary
type MonthTotalsResponse struct {
	Name     string `json:"name"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

// PreviousMonthResponse is the previous month block of the summary
type PreviousMonthResponse struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type SummaryResponse struct {
	TotalIncome     string                `json:"total_income"`
	TotalExpenses   string                `json:"total_expenses"`
	Balance         string                `json:"balance"`
	MonthlyIncome   string                `json:"monthly_income"`
	MonthlyExpenses string                `json:"monthly_expenses"`
	MonthlyChange   float64               `json:"monthly_change"`
	CurrentMonth    MonthTotalsResponse   `json:"current_month"`
	PreviousMonth   PreviousMonthResponse `json:"previous_month"`
}

func NewSummaryResponse(s *models.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		TotalIncome:     money(s.TotalIncome),
		TotalExpenses:   money(s.TotalExpenses),
		Balance:         money(s.Balance),
		MonthlyIncome:   money(s.MonthlyIncome),
		MonthlyExpenses: money(s.MonthlyExpenses),
		MonthlyChange:   s.MonthlyChange.InexactFloat64(),
		CurrentMonth: MonthTotalsResponse{
			Name:     s.CurrentMonth.Name,
			Income:   money(s.CurrentMonth.Income),
			Expenses: money(s.CurrentMonth.Expenses),
		},
		PreviousMonth: PreviousMonthResponse{
			Name:  s.PreviousMonth.Name,
			Total: money(s.PreviousMonth.Total),
		},
	}
}

type TrendResponse struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func NewTrendResponses(points []models.TrendPoint) []TrendResponse {
	out := make([]TrendResponse, 0, len(points))
	for _, p := range points {
		out = append(out, TrendResponse{Date: p.Month, Income: money(p.Income), Expense: money(p.Expense)})
	}
	return out
}

type CategoryTotalResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

func NewCategoryTotalResponses(totals []models.CategoryTotal) []CategoryTotalResponse {
	out := make([]CategoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, CategoryTotalResponse{Name: t.Name, Amount: money(t.Amount)})
	}
	return out
}
