package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/logger"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
)

const defaultDeadlineLookaheadDays = 7

type DeadlineScanner struct {
	goalRepo      repositories.GoalRepositoryInterface
	publisher     JobPublisherInterface
	auditLogger   AuditLoggerInterface
	metrics       MetricsRecorderInterface
	lookaheadDays int
	interval      time.Duration
	logger        *slog.Logger
}

// NewDeadlineScanner creates the scheduled goal deadline reminder
func NewDeadlineScanner(
	goalRepo repositories.GoalRepositoryInterface,
	publisher JobPublisherInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	cfg config.SchedulerConfig,
	l *slog.Logger,
) *DeadlineScanner {
	lookahead := cfg.DeadlineLookaheadDays
	if lookahead <= 0 {
		lookahead = defaultDeadlineLookaheadDays
	}
	interval := cfg.DeadlineScanInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DeadlineScanner{
		goalRepo:      goalRepo,
		publisher:     publisher,
		auditLogger:   auditLogger,
		metrics:       metrics,
		lookaheadDays: lookahead,
		interval:      interval,
		logger:        logger.WithComponent(l, "deadline_scanner"),
	}
}

// Scan publishes a GOAL_DEADLINE job for every in-progress goal due within
// the lookahead window, overdue goals included. A failed publish is logged
// and the scan moves on. It returns the number of jobs published.
func (s *DeadlineScanner) Scan(ctx context.Context, now time.Time) (int, error) {
	startTime := time.Now()
	cutoff := now.AddDate(0, 0, s.lookaheadDays)

	goals, err := s.goalRepo.FindInProgressDueBy(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find upcoming goals: %w", err)
	}

	published := 0
	for _, goal := range goals {
		if ctx.Err() != nil {
			break
		}

		job := &models.NotificationJob{
			UserID:           goal.UserID,
			Title:            "Goal Deadline Approaching",
			Message:          fmt.Sprintf("Your goal '%s' is due in %d days", goal.Title, goal.DaysUntilDeadline(now)),
			NotificationType: models.NotificationTypeGoalDeadline,
			Priority:         models.JobPriorityNormal,
		}
		if err := s.publisher.Publish(ctx, job); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish deadline reminder",
				slog.String("goal_id", goal.ID.String()),
				slog.String(logger.FieldError, err.Error()))
			continue
		}
		published++
		s.metrics.IncrementCounter(MetricDeadlineScan, nil)
	}

	duration := time.Since(startTime)
	s.metrics.RecordProcessingTime(MetricDeadlineScan, duration)
	s.auditLogger.LogDeadlineScan(ctx, len(goals), published, duration.Milliseconds())

	return published, ctx.Err()
}

// Run scans once immediately and then on every interval until ctx is done
func (s *DeadlineScanner) Run(ctx context.Context) error {
	s.logger.Info("starting deadline scheduler", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(ctx, time.Now()); err != nil && ctx.Err() == nil {
			s.logger.Error("deadline scan failed", slog.String(logger.FieldError, err.Error()))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("deadline scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
