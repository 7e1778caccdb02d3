package services

import (
	"context"
	"log/slog"
	"time"

	"finance-tracker/internal/logger"

	"github.com/google/uuid"
)

// AuditLogger writes machine-readable events for the notification pipeline
// and goal updates. Every record carries event_type and the request trace ID
// when there is one.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(l *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger.WithComponent(l, "audit"),
	}
}

func (al *AuditLogger) LogJobEnqueued(ctx context.Context, jobID, userID uuid.UUID, notificationType string, priority int) {
	al.logger.InfoContext(ctx, "notification job enqueued",
		slog.String("event_type", "job_enqueued"),
		slog.String("job_id", jobID.String()),
		slog.String("user_id", userID.String()),
		slog.String("notification_type", notificationType),
		slog.Int("priority", priority),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogJobProcessed(ctx context.Context, jobID uuid.UUID, result string, retryCount int, durationMs int64) {
	al.logger.InfoContext(ctx, "notification job processed",
		slog.String("event_type", "job_processed"),
		slog.String("job_id", jobID.String()),
		slog.String("result", result),
		slog.Int("retry_count", retryCount),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogJobFailed(ctx context.Context, jobID uuid.UUID, errorMsg string, retryCount int) {
	al.logger.WarnContext(ctx, "notification job failed",
		slog.String("event_type", "job_failed"),
		slog.String("job_id", jobID.String()),
		slog.String("error", errorMsg),
		slog.Int("retry_count", retryCount),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogRetryAttempt(ctx context.Context, jobID uuid.UUID, retryCount, maxRetries int, backoffMs int64) {
	al.logger.InfoContext(ctx, "retry attempt",
		slog.String("event_type", "retry_attempt"),
		slog.String("job_id", jobID.String()),
		slog.Int("retry_count", retryCount),
		slog.Int("max_retries", maxRetries),
		slog.Int64("backoff_ms", backoffMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogOptimisticLockConflict(ctx context.Context, entityType string, entityID uuid.UUID, expectedVersion, attempt int) {
	al.logger.WarnContext(ctx, "optimistic lock conflict",
		slog.String("event_type", "optimistic_lock_conflict"),
		slog.String("entity_type", entityType),
		slog.String("entity_id", entityID.String()),
		slog.Int("expected_version", expectedVersion),
		slog.Int("attempt", attempt),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogGoalCompleted(ctx context.Context, goalID, userID uuid.UUID) {
	al.logger.InfoContext(ctx, "goal completed",
		slog.String("event_type", "goal_completed"),
		slog.String("goal_id", goalID.String()),
		slog.String("user_id", userID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogDeadlineScan(ctx context.Context, goalsFound, published int, durationMs int64) {
	al.logger.InfoContext(ctx, "goal deadline scan",
		slog.String("event_type", "deadline_scan"),
		slog.Int("goals_found", goalsFound),
		slog.Int("published", published),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
	)
}

func getCorrelationID(ctx context.Context) string {
	return logger.TraceIDFromContext(ctx)
}
