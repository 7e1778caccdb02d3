package dto

import (
	"time"

	"finance-tracker/internal/models"
)

// GoalRequest creates or fully replaces a goal. current_amount and status
// are server-managed.
type GoalRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description"`
	TargetAmount Amount `json:"target_amount" validate:"required,money"`
	Deadline     string `json:"deadline" validate:"required,iso_date"`
}

type GoalPatch struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description"`
	TargetAmount *Amount `json:"target_amount" validate:"omitempty,money"`
	Deadline     *string `json:"deadline" validate:"omitempty,iso_date"`
}

// UpdateProgressRequest carries a signed progress delta
type UpdateProgressRequest struct {
	Amount Amount `json:"amount" form:"amount"`
}

type GoalListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=in_progress completed"`
}

type GoalResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	TargetAmount       string    `json:"target_amount"`
	CurrentAmount      string    `json:"current_amount"`
	Deadline           string    `json:"deadline"`
	Status             string    `json:"status"`
	ProgressPercentage float64   `json:"progress_percentage"`
	DaysRemaining      int       `json:"days_remaining"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewGoalResponse maps a goal; now anchors days_remaining
func NewGoalResponse(g *models.Goal, now time.Time) GoalResponse {
	return GoalResponse{
		ID:                 g.ID.String(),
		Title:              g.Title,
		Description:        g.Description,
		TargetAmount:       money(g.TargetAmount),
		CurrentAmount:      money(g.CurrentAmount),
		Deadline:           g.Deadline.Format(models.DateLayout),
		Status:             g.Status,
		ProgressPercentage: g.ProgressPercentage().InexactFloat64(),
		DaysRemaining:      g.DaysUntilDeadline(now),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func NewGoalResponses(goals []*models.Goal, now time.Time) []GoalResponse {
	out := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, NewGoalResponse(g, now))
	}
	return out
}
