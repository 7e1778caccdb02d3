package models

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"

	goalAmountPrecision = 12
)

var (
	ErrOptimisticLockConflict = errors.New("optimistic lock conflict: version mismatch")

	hundred = decimal.NewFromInt(100)
)

type Goal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Title         string          `gorm:"type:varchar(200);not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount"`
	Deadline      time.Time       `gorm:"type:date;not null;index" json:"deadline"`
	Status        string          `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`
	Version       int             `gorm:"not null;default:1" json:"-"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (*Goal) TableName() string {
	return "goals"
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = GoalStatusInProgress
	}
	if g.Version == 0 {
		g.Version = 1
	}
	return nil
}

// Validate checks the client-editable fields. today is the caller's current
// date; deadlines before it are rejected.
func (g *Goal) Validate(today time.Time) error {
	errs := ValidationErrors{}

	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		errs.Add("title", "Title cannot be empty")
	} else if utf8.RuneCountInString(g.Title) > 200 {
		errs.Add("title", "Ensure this field has no more than 200 characters.")
	}

	if !g.TargetAmount.IsPositive() {
		errs.Add("target_amount", "Target amount must be greater than zero")
	} else {
		checkMoney(errs, "target_amount", g.TargetAmount, goalAmountPrecision, false)
	}

	if g.Deadline.IsZero() {
		errs.Add("deadline", "This field is required.")
	} else if TruncateToDate(g.Deadline).Before(TruncateToDate(today)) {
		errs.Add("deadline", "Deadline cannot be in the past")
	}

	return errs.OrNil()
}

// ApplyProgress adds delta to the saved amount. The result is floored at zero
// and capped at the target; status is completed exactly when the cap is hit.
// It reports whether this call moved the goal into the completed state.
// A delta outside the money range leaves the goal untouched.
func (g *Goal) ApplyProgress(delta decimal.Decimal) bool {
	if !MoneyInRange(delta) {
		return false
	}
	wasCompleted := g.IsCompleted()

	current := g.CurrentAmount.Add(delta)
	if current.IsNegative() {
		current = decimal.Zero
	}
	if current.GreaterThanOrEqual(g.TargetAmount) {
		current = g.TargetAmount
	}
	g.CurrentAmount = RoundMoney(current)
	g.ReevaluateStatus()

	return !wasCompleted && g.IsCompleted()
}

// ReevaluateStatus recomputes status after the target changed. The saved
// amount is clamped to a lowered target so it never exceeds it.
func (g *Goal) ReevaluateStatus() {
	if g.CurrentAmount.GreaterThan(g.TargetAmount) {
		g.CurrentAmount = g.TargetAmount
	}
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = GoalStatusCompleted
	} else {
		g.Status = GoalStatusInProgress
	}
}

func (g *Goal) IsCompleted() bool {
	return g.Status == GoalStatusCompleted
}

// ProgressPercentage is current/target as a percentage rounded to 2 places.
func (g *Goal) ProgressPercentage() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Mul(hundred).DivRound(g.TargetAmount, 2)
}

// DaysUntilDeadline counts whole calendar days from now to the deadline.
func (g *Goal) DaysUntilDeadline(now time.Time) int {
	diff := TruncateToDate(g.Deadline).Sub(TruncateToDate(now))
	return int(math.Round(diff.Hours() / 24))
}
