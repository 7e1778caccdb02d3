package services

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
)

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.Claims, error)
	ValidateRefreshToken(tokenString string) (*models.Claims, error)
	ParseAuthorizationHeader(authHeader string) (string, string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.Session, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.Session, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.JWTPair, error)
	Logout(userID uuid.UUID, accessToken, ipAddress, userAgent string) error
	AuthenticateAccessToken(accessToken string) (*models.User, error)
	AuthenticateKey(key string) (*models.User, error)
}

// AuditServiceInterface records auth and profile events
type AuditServiceInterface interface {
	Record(userID *uuid.UUID, action, resource, ipAddress, userAgent string, metadata map[string]interface{})
	GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	PurgeOlderThan(age time.Duration) (int64, error)
}

// MediaStorageInterface stores uploaded files under relative paths
type MediaStorageInterface interface {
	Save(dir, originalName string, src io.Reader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

type ProfileServiceInterface interface {
	GetProfile(userID uuid.UUID) (*models.User, error)
	UpdateProfile(userID uuid.UUID, update dto.ProfileUpdate, picture *multipart.FileHeader, ipAddress, userAgent string) (*models.User, error)
	UpdateSettings(userID uuid.UUID, req dto.SettingsRequest, ipAddress, userAgent string) (*models.User, error)
	DeleteAccount(userID uuid.UUID, ipAddress, userAgent string) error
}

// CategoryServiceInterface defines owner-scoped category operations
type CategoryServiceInterface interface {
	List(userID uuid.UUID, categoryType string) ([]*models.Category, error)
	Get(userID, id uuid.UUID) (*models.Category, error)
	Create(userID uuid.UUID, req dto.CategoryRequest) (*models.Category, error)
	Replace(userID, id uuid.UUID, req dto.CategoryRequest) (*models.Category, error)
	Patch(userID, id uuid.UUID, patch dto.CategoryPatch) (*models.Category, error)
	Delete(userID, id uuid.UUID) error
}

// TransactionServiceInterface defines transaction CRUD and the aggregation views
type TransactionServiceInterface interface {
	List(userID uuid.UUID, query dto.TransactionListQuery) (*dto.Page[dto.TransactionResponse], error)
	Get(userID, id uuid.UUID) (*models.Transaction, error)
	Create(userID uuid.UUID, req dto.TransactionRequest) (*models.Transaction, error)
	Replace(userID, id uuid.UUID, req dto.TransactionRequest) (*models.Transaction, error)
	Patch(userID, id uuid.UUID, patch dto.TransactionPatch) (*models.Transaction, error)
	Delete(userID, id uuid.UUID) error
	Summary(userID uuid.UUID) (*models.TransactionSummary, error)
	Trends(userID uuid.UUID) ([]models.TrendPoint, error)
	ByCategory(userID uuid.UUID) ([]models.CategoryTotal, error)
}

type GoalServiceInterface interface {
	List(userID uuid.UUID, status string) ([]*models.Goal, error)
	Get(userID, id uuid.UUID) (*models.Goal, error)
	Create(userID uuid.UUID, req dto.GoalRequest) (*models.Goal, error)
	Replace(userID, id uuid.UUID, req dto.GoalRequest) (*models.Goal, error)
	Patch(userID, id uuid.UUID, patch dto.GoalPatch) (*models.Goal, error)
	Delete(userID, id uuid.UUID) error
	UpdateProgress(ctx context.Context, userID, id uuid.UUID, rawAmount string) (*models.Goal, error)
}

type DashboardServiceInterface interface {
	Stats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
}

type NotificationServiceInterface interface {
	List(userID uuid.UUID, query dto.NotificationListQuery) (*dto.Page[dto.NotificationResponse], error)
	MarkRead(userID, id uuid.UUID) error
	MarkAllRead(userID uuid.UUID) (int64, error)
	UnreadCount(userID uuid.UUID) (int64, error)
	Delete(userID, id uuid.UUID) error
	Notify(userID uuid.UUID, title, message, notificationType string) (*models.Notification, error)
}

type MailerInterface interface {
	Send(ctx context.Context, to, subject, body string) error
}

// JobPublisherInterface hands notification jobs to the queue
type JobPublisherInterface interface {
	Publish(ctx context.Context, job *models.NotificationJob) error
}

// NotificationJobHandlerInterface executes one job and describes the outcome
type NotificationJobHandlerInterface interface {
	Handle(ctx context.Context, job *models.NotificationJob) string
	Process(ctx context.Context, job *models.NotificationJob) (string, error)
}

// MessagePublisherInterface sends raw message bodies to the broker
type MessagePublisherInterface interface {
	Publish(ctx context.Context, body []byte) error
}

type JobWorkerInterface interface {
	Run(ctx context.Context) error
}

type DeadlineScannerInterface interface {
	Scan(ctx context.Context, now time.Time) (int, error)
}

// MaintenanceServiceInterface purges expired tokens and old queue rows
type MaintenanceServiceInterface interface {
	Cleanup(ctx context.Context, now time.Time) error
}

// DemoDataGeneratorInterface generates realistic demo data for a user
type DemoDataGeneratorInterface interface {
	Categories(userID uuid.UUID) []*models.Category
	Transactions(userID uuid.UUID, categories []*models.Category, start, end time.Time) []*models.Transaction
	Goals(userID uuid.UUID, now time.Time) []*models.Goal
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuditLoggerInterface interface {
	LogJobEnqueued(ctx context.Context, jobID, userID uuid.UUID, notificationType string, priority int)
	LogJobProcessed(ctx context.Context, jobID uuid.UUID, result string, retryCount int, durationMs int64)
	LogJobFailed(ctx context.Context, jobID uuid.UUID, errorMsg string, retryCount int)
	LogRetryAttempt(ctx context.Context, jobID uuid.UUID, retryCount, maxRetries int, backoffMs int64)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
	LogOptimisticLockConflict(ctx context.Context, entityType string, entityID uuid.UUID, expectedVersion, attempt int)
	LogGoalCompleted(ctx context.Context, goalID, userID uuid.UUID)
	LogDeadlineScan(ctx context.Context, goalsFound, published int, durationMs int64)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}
