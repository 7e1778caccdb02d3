package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

var ErrInvalidUserID = errors.New("invalid user ID")

// AuditService persists auth and profile events
type AuditService struct {
	repo   repositories.AuditLogRepositoryInterface
	logger *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditLogRepositoryInterface, logger *slog.Logger) AuditServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// Record writes an audit entry. Failures are logged and never returned.
func (s *AuditService) Record(userID *uuid.UUID, action, resource, ipAddress, userAgent string, metadata map[string]interface{}) {
	entry := models.NewAuditLog(userID, action, resource, ipAddress, userAgent)
	for key, value := range metadata {
		entry.SetMetadata(key, value)
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to create audit log",
			"error", err,
			"action", action,
			"resource", resource,
			"resource_id", entry.ResourceID)
	}
}

// GetUserActivity lists a user's audit entries, newest first
func (s *AuditService) GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrInvalidUserID
	}

	logs, total, err := s.repo.ListForUser(userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get user activity: %w", err)
	}

	return logs, total, nil
}

// PurgeOlderThan deletes entries older than age
func (s *AuditService) PurgeOlderThan(age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", age)
	}

	deleted, err := s.repo.DeleteCreatedBefore(time.Now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}

	return deleted, nil
}
