package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxProgressAttempts = 3

var (
	ErrInvalidAmount = errors.New("Invalid amount value")
	ErrGoalConflict  = errors.New("goal was modified concurrently, please retry")
)

type goalService struct {
	repo        repositories.GoalRepositoryInterface
	publisher   JobPublisherInterface
	auditLogger AuditLoggerInterface
	logger      *slog.Logger
	now         func() time.Time
}

// NewGoalService creates a new GoalServiceInterface instance. publisher
// receives a GOAL_MILESTONE job whenever a goal becomes completed.
func NewGoalService(
	repo repositories.GoalRepositoryInterface,
	publisher JobPublisherInterface,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
) GoalServiceInterface {
	return newGoalService(repo, publisher, auditLogger, logger, time.Now)
}

func newGoalService(
	repo repositories.GoalRepositoryInterface,
	publisher JobPublisherInterface,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
	now func() time.Time,
) *goalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &goalService{
		repo:        repo,
		publisher:   publisher,
		auditLogger: auditLogger,
		logger:      logger,
		now:         now,
	}
}

func (s *goalService) List(userID uuid.UUID, status string) ([]*models.Goal, error) {
	if status != "" && status != models.GoalStatusInProgress && status != models.GoalStatusCompleted {
		return nil, models.ValidationErrors{"status": fmt.Sprintf("%q is not a valid choice.", status)}
	}
	return s.repo.List(userID, status)
}

func (s *goalService) Get(userID, id uuid.UUID) (*models.Goal, error) {
	return s.repo.GetByID(userID, id)
}

// Create starts a goal at zero progress
func (s *goalService) Create(userID uuid.UUID, req dto.GoalRequest) (*models.Goal, error) {
	goal := &models.Goal{
		UserID:        userID,
		CurrentAmount: decimal.Zero,
		Status:        models.GoalStatusInProgress,
	}

	errs := models.ValidationErrors{}
	applyGoalRequest(errs, goal, req)
	if err := s.validate(errs, goal, true); err != nil {
		return nil, err
	}
	goal.ReevaluateStatus()

	if err := s.repo.Create(goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *goalService) Replace(userID, id uuid.UUID, req dto.GoalRequest) (*models.Goal, error) {
	goal, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	errs := models.ValidationErrors{}
	applyGoalRequest(errs, goal, req)
	return s.save(errs, goal, true)
}

func (s *goalService) Patch(userID, id uuid.UUID, patch dto.GoalPatch) (*models.Goal, error) {
	goal, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	errs := models.ValidationErrors{}
	if patch.Title != nil {
		goal.Title = *patch.Title
	}
	if patch.Description != nil {
		goal.Description = *patch.Description
	}
	if patch.TargetAmount != nil {
		if target, err := patch.TargetAmount.Decimal(); err != nil {
			errs.Add("target_amount", msgInvalidNumber)
		} else {
			goal.TargetAmount = target
		}
	}
	if patch.Deadline != nil {
		if deadline, err := models.ParseDate(*patch.Deadline); err != nil {
			errs.Add("deadline", msgInvalidDate)
		} else {
			goal.Deadline = deadline
		}
	}

	return s.save(errs, goal, patch.Deadline != nil)
}

func (s *goalService) Delete(userID, id uuid.UUID) error {
	return s.repo.Delete(userID, id)
}

// UpdateProgress adds a signed amount to the goal. An empty amount counts
// as zero. Each attempt re-reads the goal and writes it back only if no
// other writer got there first; after maxProgressAttempts lost races it
// gives up with ErrGoalConflict.
func (s *goalService) UpdateProgress(ctx context.Context, userID, id uuid.UUID, rawAmount string) (*models.Goal, error) {
	delta := decimal.Zero
	if raw := strings.TrimSpace(rawAmount); raw != "" {
		parsed, err := models.ParseMoney(raw)
		if err != nil {
			return nil, ErrInvalidAmount
		}
		delta = parsed
	}

	for attempt := 1; attempt <= maxProgressAttempts; attempt++ {
		goal, err := s.repo.GetByID(userID, id)
		if err != nil {
			return nil, err
		}

		expectedVersion := goal.Version
		completed := goal.ApplyProgress(delta)

		err = s.repo.UpdateWithOptimisticLock(goal)
		if errors.Is(err, models.ErrOptimisticLockConflict) {
			if s.auditLogger != nil {
				s.auditLogger.LogOptimisticLockConflict(ctx, "goal", goal.ID, expectedVersion, attempt)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update goal progress: %w", err)
		}

		if completed {
			s.announceCompletion(ctx, goal)
		}

		return goal, nil
	}

	s.logger.WarnContext(ctx, "goal progress update abandoned after repeated conflicts",
		"goal_id", id,
		"user_id", userID,
		"attempts", maxProgressAttempts)

	return nil, ErrGoalConflict
}

// announceCompletion queues the milestone notification. Failures are
// logged; the progress update itself has already been saved.
func (s *goalService) announceCompletion(ctx context.Context, goal *models.Goal) {
	if s.auditLogger != nil {
		s.auditLogger.LogGoalCompleted(ctx, goal.ID, goal.UserID)
	}
	if s.publisher == nil {
		return
	}

	job := &models.NotificationJob{
		UserID:           goal.UserID,
		Title:            "Goal Completed",
		Message:          fmt.Sprintf("Congratulations! You reached your goal '%s'", goal.Title),
		NotificationType: models.NotificationTypeGoalMilestone,
		Priority:         models.JobPriorityHigh,
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish goal milestone",
			"error", err,
			"goal_id", goal.ID,
			"user_id", goal.UserID)
	}
}

// save validates and persists an edited goal. Status follows the target:
// completed exactly when the saved amount reaches it.
func (s *goalService) save(errs models.ValidationErrors, goal *models.Goal, deadlineSent bool) (*models.Goal, error) {
	if err := s.validate(errs, goal, deadlineSent); err != nil {
		return nil, err
	}
	goal.ReevaluateStatus()

	if err := s.repo.UpdateWithOptimisticLock(goal); err != nil {
		if errors.Is(err, models.ErrOptimisticLockConflict) {
			return nil, ErrGoalConflict
		}
		return nil, err
	}

	return goal, nil
}

// validate merges model errors into errs. A deadline the client did not
// send is not re-checked against today, so an overdue goal stays editable.
func (s *goalService) validate(errs models.ValidationErrors, goal *models.Goal, deadlineSent bool) error {
	today := s.now()
	if !deadlineSent && !goal.Deadline.IsZero() && goal.Deadline.Before(today) {
		today = goal.Deadline
	}

	if err := goal.Validate(today); err != nil {
		var modelErrs models.ValidationErrors
		if !errors.As(err, &modelErrs) {
			return err
		}
		for field, message := range modelErrs {
			errs.Add(field, message)
		}
	}
	return errs.OrNil()
}

func applyGoalRequest(errs models.ValidationErrors, goal *models.Goal, req dto.GoalRequest) {
	goal.Title = req.Title
	goal.Description = req.Description

	if target, err := req.TargetAmount.Decimal(); err != nil {
		errs.Add("target_amount", msgInvalidNumber)
	} else {
		goal.TargetAmount = target
	}

	if deadline, err := models.ParseDate(req.Deadline); err != nil {
		errs.Add("deadline", msgInvalidDate)
	} else {
		goal.Deadline = deadline
	}
}
