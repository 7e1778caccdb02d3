package repositories

import (
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
)

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	EmailExists(email string, excludeID uuid.UUID) (bool, error)
	UsernameExists(username string, excludeID uuid.UUID) (bool, error)
	Update(user *models.User) error
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
}

// AuthTokenRepositoryInterface defines the interface for opaque token operations
type AuthTokenRepositoryInterface interface {
	GetOrCreate(userID uuid.UUID) (*models.AuthToken, error)
	GetByKey(key string) (*models.AuthToken, error)
	DeleteByUserID(userID uuid.UUID) error
}

// RefreshTokenRepositoryInterface defines the interface for refresh token operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Revoke(id uuid.UUID) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the interface for access token revocation
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	IsBlacklisted(jti string) (bool, error)
	DeleteExpired() (int64, error)
}

// AuditLogRepositoryInterface stores the security trail behind the
// profile activity feed.
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	ListForUser(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteCreatedBefore(cutoff time.Time) (int64, error)
}

// CategoryRepositoryInterface defines the interface for category operations.
// Every read and write is scoped to the owning user.
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(userID, id uuid.UUID) (*models.Category, error)
	List(userID uuid.UUID, categoryType string) ([]*models.Category, error)
	Update(category *models.Category) error
	Delete(userID, id uuid.UUID) error
}

// TransactionRepositoryInterface defines the interface for transaction
// persistence and SQL-side aggregation
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	GetByID(userID, id uuid.UUID) (*models.Transaction, error)
	List(userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, int64, error)
	Update(transaction *models.Transaction) error
	Delete(userID, id uuid.UUID) error
	SumByType(userID uuid.UUID, from, to *time.Time) (models.TypeTotals, error)
	ExpensesByCategory(userID uuid.UUID) ([]models.CategoryTotal, error)
	MonthlyTotals(userID uuid.UUID, since time.Time) ([]models.TrendPoint, error)
}

// GoalRepositoryInterface defines the interface for goal operations
type GoalRepositoryInterface interface {
	Create(goal *models.Goal) error
	GetByID(userID, id uuid.UUID) (*models.Goal, error)
	List(userID uuid.UUID, status string) ([]*models.Goal, error)
	UpdateWithOptimisticLock(goal *models.Goal) error
	Delete(userID, id uuid.UUID) error
	CountByStatus(userID uuid.UUID, status string) (int64, error)
	FindInProgressDueBy(cutoff time.Time) ([]*models.Goal, error)
}

// NotificationRepositoryInterface defines the interface for notification operations
type NotificationRepositoryInterface interface {
	Create(notification *models.Notification) error
	GetByID(userID, id uuid.UUID) (*models.Notification, error)
	List(userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*models.Notification, int64, error)
	MarkRead(userID, id uuid.UUID) error
	MarkAllRead(userID uuid.UUID) (int64, error)
	CountUnread(userID uuid.UUID) (int64, error)
	Delete(userID, id uuid.UUID) error
}

// NotificationJobRepositoryInterface defines the database-backed job queue
type NotificationJobRepositoryInterface interface {
	Enqueue(job *models.NotificationJob) error
	FetchPending(limit int) ([]*models.NotificationJob, error)
	MarkProcessing(id uuid.UUID) error
	MarkCompleted(id uuid.UUID, result string) error
	MarkFailed(id uuid.UUID, errorMessage string) error
	IncrementRetry(id uuid.UUID, errorMessage string) error
	CountByStatus(status string) (int64, error)
	CleanupCompleted(olderThan time.Time) (int64, error)
}
