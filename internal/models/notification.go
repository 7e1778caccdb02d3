package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeBillDue        = "BILL_DUE"
	NotificationTypeBudgetExceeded = "BUDGET_EXCEEDED"
	NotificationTypeGoalMilestone  = "GOAL_MILESTONE"
	NotificationTypeGoalDeadline   = "GOAL_DEADLINE"
	NotificationTypeSystem         = "SYSTEM"
)

func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeBillDue, NotificationTypeBudgetExceeded, NotificationTypeGoalMilestone,
		NotificationTypeGoalDeadline, NotificationTypeSystem:
		return true
	}
	return false
}

type Notification struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Title            string    `gorm:"type:varchar(200);not null" json:"title"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	NotificationType string    `gorm:"type:varchar(20);not null" json:"notification_type"`
	IsRead           bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (*Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.NotificationType == "" {
		n.NotificationType = NotificationTypeSystem
	}
	return nil
}

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"

	JobPriorityNormal = 100
	JobPriorityHigh   = 200

	DefaultJobMaxRetries = 3
)

// NotificationJob is a queued request to notify a user. Rows are used as the
// job queue when no message broker is configured.
type NotificationJob struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title            string     `gorm:"type:varchar(200);not null" json:"title"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	NotificationType string     `gorm:"type:varchar(20);not null" json:"notification_type"`
	Priority         int        `gorm:"not null;default:100;index:idx_notification_jobs_status,priority:2" json:"priority"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_notification_jobs_status,priority:1" json:"status"`
	RetryCount       int        `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries       int        `gorm:"not null;default:3" json:"max_retries"`
	ScheduledAt      time.Time  `gorm:"not null;index:idx_notification_jobs_status,priority:3" json:"scheduled_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	Result           string     `gorm:"type:text" json:"result,omitempty"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (*NotificationJob) TableName() string {
	return "notification_jobs"
}

func (j *NotificationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.Priority == 0 {
		j.Priority = JobPriorityNormal
	}
	if j.MaxRetries == 0 {
		j.MaxRetries = DefaultJobMaxRetries
	}
	if j.ScheduledAt.IsZero() {
		j.ScheduledAt = time.Now()
	}
	return nil
}

// NextScheduledTime backs off exponentially: 2^retry seconds.
func (j *NotificationJob) NextScheduledTime() time.Time {
	backoffSeconds := 1 << uint(j.RetryCount)
	return time.Now().Add(time.Duration(backoffSeconds) * time.Second)
}

func (j *NotificationJob) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}
