package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/logger"
	"finance-tracker/internal/repositories"
)

const (
	auditLogRetention = 90 * 24 * time.Hour
	jobRetention      = 7 * 24 * time.Hour
)

type maintenanceService struct {
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	jobRepo              repositories.NotificationJobRepositoryInterface
	auditService         AuditServiceInterface
	logger               *slog.Logger
}

// NewMaintenanceService creates the periodic cleanup task run by the scheduler
func NewMaintenanceService(
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	jobRepo repositories.NotificationJobRepositoryInterface,
	auditService AuditServiceInterface,
	l *slog.Logger,
) MaintenanceServiceInterface {
	return &maintenanceService{
		refreshTokenRepo:     refreshTokenRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		jobRepo:              jobRepo,
		auditService:         auditService,
		logger:               logger.WithComponent(l, "maintenance"),
	}
}

// Cleanup runs every purge even when one fails and joins the errors
func (s *maintenanceService) Cleanup(ctx context.Context, now time.Time) error {
	var errs []error

	if n, err := s.refreshTokenRepo.DeleteExpired(); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete expired refresh tokens: %w", err))
	} else {
		s.logger.InfoContext(ctx, "expired refresh tokens deleted", "count", n)
	}

	if n, err := s.blacklistedTokenRepo.DeleteExpired(); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete expired blacklist entries: %w", err))
	} else {
		s.logger.InfoContext(ctx, "expired blacklist entries deleted", "count", n)
	}

	if n, err := s.auditService.PurgeOlderThan(auditLogRetention); err != nil {
		errs = append(errs, err)
	} else {
		s.logger.InfoContext(ctx, "old audit logs purged", "count", n)
	}

	if n, err := s.jobRepo.CleanupCompleted(now.Add(-jobRetention)); err != nil {
		errs = append(errs, fmt.Errorf("failed to clean up finished jobs: %w", err))
	} else {
		s.logger.InfoContext(ctx, "finished notification jobs removed", "count", n)
	}

	return errors.Join(errs...)
}
