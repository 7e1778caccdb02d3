package repositories

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errNilAuditLog = errors.New("audit log cannot be nil")

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository returns a gorm-backed AuditLogRepositoryInterface.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *models.AuditLog) error {
	if entry == nil {
		return errNilAuditLog
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record %s audit entry: %w", entry.Action, err)
	}
	return nil
}

// ListForUser pages through one user's entries. Entries written in the same
// instant keep a stable order through the id tie-breaker.
func (r *auditLogRepository) ListForUser(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	scoped := r.db.Model(&models.AuditLog{}).Where("user_id = ?", userID)

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity for user %s: %w", userID, err)
	}
	if total == 0 || offset >= int(total) {
		return []*models.AuditLog{}, total, nil
	}

	entries := []*models.AuditLog{}
	if err := scoped.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity for user %s: %w", userID, err)
	}
	return entries, total, nil
}

// DeleteCreatedBefore drops entries past the retention cutoff, including
// anonymous failed-login entries.
func (r *auditLogRepository) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge audit entries before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
