package services

import (
	"context"
	"fmt"
	"strconv"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

// DatabaseJobPublisher stores jobs as notification_jobs rows for the
// polling worker.
type DatabaseJobPublisher struct {
	jobRepo     repositories.NotificationJobRepositoryInterface
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
	maxRetries  int
}

func NewDatabaseJobPublisher(
	jobRepo repositories.NotificationJobRepositoryInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	maxRetries int,
) JobPublisherInterface {
	if maxRetries <= 0 {
		maxRetries = models.DefaultJobMaxRetries
	}
	return &DatabaseJobPublisher{
		jobRepo:     jobRepo,
		auditLogger: auditLogger,
		metrics:     metrics,
		maxRetries:  maxRetries,
	}
}

func (p *DatabaseJobPublisher) Publish(ctx context.Context, job *models.NotificationJob) error {
	if job.MaxRetries == 0 {
		job.MaxRetries = p.maxRetries
	}

	if err := p.jobRepo.Enqueue(job); err != nil {
		return fmt.Errorf("failed to enqueue notification job: %w", err)
	}

	recordEnqueued(ctx, p.auditLogger, p.metrics, job)
	return nil
}

// AMQPJobPublisher sends jobs to the broker as persistent JSON messages
type AMQPJobPublisher struct {
	publisher   MessagePublisherInterface
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
}

func NewAMQPJobPublisher(
	publisher MessagePublisherInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
) JobPublisherInterface {
	return &AMQPJobPublisher{
		publisher:   publisher,
		auditLogger: auditLogger,
		metrics:     metrics,
	}
}

func (p *AMQPJobPublisher) Publish(ctx context.Context, job *models.NotificationJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Priority == 0 {
		job.Priority = models.JobPriorityNormal
	}

	body, err := amqp.NewNotificationMessage(job).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	if err := p.publisher.Publish(ctx, body); err != nil {
		return fmt.Errorf("failed to publish notification job: %w", err)
	}

	recordEnqueued(ctx, p.auditLogger, p.metrics, job)
	return nil
}

func recordEnqueued(ctx context.Context, auditLogger AuditLoggerInterface, metrics MetricsRecorderInterface, job *models.NotificationJob) {
	if auditLogger != nil {
		auditLogger.LogJobEnqueued(ctx, job.ID, job.UserID, job.NotificationType, job.Priority)
	}
	if metrics != nil {
		metrics.IncrementCounter(MetricJobEnqueued, map[string]string{
			"notification_type": job.NotificationType,
			"priority":          strconv.Itoa(job.Priority),
		})
	}
}
