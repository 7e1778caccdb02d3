package repositories

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGoalNotFound = errors.New("goal not found")

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *gorm.DB) GoalRepositoryInterface {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *models.Goal) error {
	if goal == nil {
		return errors.New("goal cannot be nil")
	}

	if err := r.db.Omit("User").Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

func (r *goalRepository) GetByID(userID, id uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return &goal, nil
}

// List returns the user's goals, nearest deadline first. An empty status
// returns every goal.
func (r *goalRepository) List(userID uuid.UUID, status string) ([]*models.Goal, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var goals []*models.Goal
	if err := query.Order("deadline ASC, created_at ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return goals, nil
}

// UpdateWithOptimisticLock writes goal only if its stored version still
// matches goal.Version. On success goal.Version is advanced.
func (r *goalRepository) UpdateWithOptimisticLock(goal *models.Goal) error {
	expectedVersion := goal.Version

	result := r.db.Model(&models.Goal{}).
		Where("id = ? AND user_id = ? AND version = ?", goal.ID, goal.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"title":          goal.Title,
			"description":    goal.Description,
			"target_amount":  goal.TargetAmount,
			"current_amount": goal.CurrentAmount,
			"deadline":       goal.Deadline,
			"status":         goal.Status,
			"version":        expectedVersion + 1,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update goal with optimistic lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrOptimisticLockConflict
	}

	goal.Version = expectedVersion + 1
	return nil
}

func (r *goalRepository) Delete(userID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Goal{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *goalRepository) CountByStatus(userID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return count, nil
}

// FindInProgressDueBy returns in-progress goals of every user whose deadline
// is on or before cutoff.
func (r *goalRepository) FindInProgressDueBy(cutoff time.Time) ([]*models.Goal, error) {
	var goals []*models.Goal
	err := r.db.Where("status = ? AND deadline <= ?", models.GoalStatusInProgress, models.TruncateToDate(cutoff)).
		Order("deadline ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find goals due by %s: %w", cutoff.Format(models.DateLayout), err)
	}
	return goals, nil
}
