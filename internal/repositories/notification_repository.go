package repositories

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrJobNotFound          = errors.New("notification job not found")
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepositoryInterface {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	if err := r.db.Omit("User").Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetByID(userID, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// List returns the user's notifications newest first
func (r *notificationRepository) List(userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flags one notification as read. Marking an already read
// notification succeeds.
func (r *notificationRepository) MarkRead(userID, id uuid.UUID) error {
	if _, err := r.GetByID(userID, id); err != nil {
		return err
	}

	err := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) Delete(userID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

type notificationJobRepository struct {
	db *gorm.DB
}

// NewNotificationJobRepository creates the database-backed job queue
func NewNotificationJobRepository(db *gorm.DB) NotificationJobRepositoryInterface {
	return &notificationJobRepository{db: db}
}

func (r *notificationJobRepository) Enqueue(job *models.NotificationJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to enqueue notification job: %w", err)
	}

	return nil
}

// FetchPending returns due jobs, highest priority first
func (r *notificationJobRepository) FetchPending(limit int) ([]*models.NotificationJob, error) {
	var jobs []*models.NotificationJob

	err := r.db.Where("status = ? AND scheduled_at <= ?", models.JobStatusPending, time.Now()).
		Order("priority DESC, scheduled_at ASC").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	return jobs, nil
}

// MarkProcessing claims a pending job. It fails with ErrJobNotFound when
// another worker claimed it first.
func (r *notificationJobRepository) MarkProcessing(id uuid.UUID) error {
	result := r.db.Model(&models.NotificationJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Update("status", models.JobStatusProcessing)

	if result.Error != nil {
		return fmt.Errorf("failed to mark job as processing: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

func (r *notificationJobRepository) MarkCompleted(id uuid.UUID, jobResult string) error {
	return r.finish(id, map[string]interface{}{
		"status":       models.JobStatusCompleted,
		"result":       jobResult,
		"processed_at": time.Now(),
	})
}

func (r *notificationJobRepository) MarkFailed(id uuid.UUID, errorMessage string) error {
	return r.finish(id, map[string]interface{}{
		"status":        models.JobStatusFailed,
		"error_message": errorMessage,
		"processed_at":  time.Now(),
	})
}

func (r *notificationJobRepository) finish(id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.Model(&models.NotificationJob{}).Where("id = ?", id).Updates(fields)

	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// IncrementRetry puts the job back in the queue with exponential backoff
func (r *notificationJobRepository) IncrementRetry(id uuid.UUID, errorMessage string) error {
	var job models.NotificationJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to find job: %w", err)
	}

	job.RetryCount++
	err := r.db.Model(&models.NotificationJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"retry_count":   job.RetryCount,
		"scheduled_at":  job.NextScheduledTime(),
		"status":        models.JobStatusPending,
		"error_message": errorMessage,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}

	return nil
}

func (r *notificationJobRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.NotificationJob{}).
		Where("status = ?", status).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count %s jobs: %w", status, err)
	}

	return count, nil
}

// CleanupCompleted deletes completed jobs processed before olderThan
func (r *notificationJobRepository) CleanupCompleted(olderThan time.Time) (int64, error) {
	result := r.db.Where("status = ? AND processed_at < ?", models.JobStatusCompleted, olderThan).
		Delete(&models.NotificationJob{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup completed jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}
