package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/config"
	"finance-tracker/internal/logger"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
)

// DatabaseJobWorker polls notification_jobs and runs due jobs with bounded
// concurrency. Failed jobs are rescheduled with exponential backoff until
// they run out of retries.
type DatabaseJobWorker struct {
	jobRepo         repositories.NotificationJobRepositoryInterface
	handler         NotificationJobHandlerInterface
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	pollInterval    time.Duration
	maxWorkers      int
	workerSemaphore chan struct{}
	logger          *slog.Logger
}

func NewDatabaseJobWorker(
	jobRepo repositories.NotificationJobRepositoryInterface,
	handler NotificationJobHandlerInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	cfg config.SchedulerConfig,
	l *slog.Logger,
) *DatabaseJobWorker {
	maxWorkers := cfg.WorkerConcurrency
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	pollInterval := cfg.WorkerPollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &DatabaseJobWorker{
		jobRepo:         jobRepo,
		handler:         handler,
		auditLogger:     auditLogger,
		metrics:         metrics,
		pollInterval:    pollInterval,
		maxWorkers:      maxWorkers,
		workerSemaphore: make(chan struct{}, maxWorkers),
		logger:          logger.WithComponent(l, "notification_worker"),
	}
}

func (w *DatabaseJobWorker) Run(ctx context.Context) error {
	w.logger.Info("starting notification worker",
		slog.Int("max_workers", w.maxWorkers),
		slog.Duration("poll_interval", w.pollInterval),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker shutting down, waiting for jobs to complete")
			wg.Wait()
			w.logger.Info("notification worker stopped")
			return nil

		case <-ticker.C:
			if _, err := w.dispatch(ctx, &wg); err != nil {
				w.logger.Error("failed to fetch pending jobs", slog.String(logger.FieldError, err.Error()))
			}
		}
	}
}

// ProcessPending runs one poll cycle and waits for its jobs to finish
func (w *DatabaseJobWorker) ProcessPending(ctx context.Context) (int, error) {
	var wg sync.WaitGroup
	n, err := w.dispatch(ctx, &wg)
	wg.Wait()
	return n, err
}

func (w *DatabaseJobWorker) dispatch(ctx context.Context, wg *sync.WaitGroup) (int, error) {
	w.recordQueueDepth()

	jobs, err := w.jobRepo.FetchPending(w.maxWorkers * 2)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for _, job := range jobs {
		if err := w.jobRepo.MarkProcessing(job.ID); err != nil {
			if !errors.Is(err, repositories.ErrJobNotFound) {
				w.logger.Error("failed to claim job",
					slog.String("job_id", job.ID.String()),
					slog.String(logger.FieldError, err.Error()))
			}
			continue
		}
		claimed++

		wg.Add(1)
		go w.processAsync(ctx, job, wg)
	}

	return claimed, nil
}

func (w *DatabaseJobWorker) processAsync(ctx context.Context, job *models.NotificationJob, wg *sync.WaitGroup) {
	defer wg.Done()

	w.workerSemaphore <- struct{}{}
	defer func() { <-w.workerSemaphore }()

	if err := w.ProcessJob(ctx, job); err != nil {
		w.logger.Error("failed to record job outcome",
			slog.String("job_id", job.ID.String()),
			slog.String(logger.FieldError, err.Error()),
		)
	}
}

// ProcessJob runs a claimed job and records the outcome on its row
func (w *DatabaseJobWorker) ProcessJob(ctx context.Context, job *models.NotificationJob) error {
	startTime := time.Now()

	result, err := w.handler.Process(ctx, job)
	duration := time.Since(startTime)
	w.metrics.RecordProcessingTime(MetricJobProcessing, duration)

	if err == nil {
		if markErr := w.jobRepo.MarkCompleted(job.ID, result); markErr != nil {
			return markErr
		}
		w.auditLogger.LogJobProcessed(ctx, job.ID, result, job.RetryCount, duration.Milliseconds())
		w.metrics.IncrementCounter(MetricJobProcessed, map[string]string{"status": "success"})
		return nil
	}

	if !errors.Is(err, ErrPermanentJobFailure) && job.CanRetry() {
		return w.scheduleRetry(ctx, job, result)
	}

	return w.fail(ctx, job, result)
}

func (w *DatabaseJobWorker) scheduleRetry(ctx context.Context, job *models.NotificationJob, result string) error {
	backoffMs := int64(math.Pow(2, float64(job.RetryCount)) * 1000)
	w.auditLogger.LogRetryAttempt(ctx, job.ID, job.RetryCount+1, job.MaxRetries, backoffMs)

	if err := w.jobRepo.IncrementRetry(job.ID, result); err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}

	w.metrics.IncrementCounter(MetricJobRetry, nil)
	return nil
}

func (w *DatabaseJobWorker) fail(ctx context.Context, job *models.NotificationJob, result string) error {
	if err := w.jobRepo.MarkFailed(job.ID, result); err != nil {
		return err
	}
	w.auditLogger.LogJobFailed(ctx, job.ID, result, job.RetryCount)
	w.metrics.IncrementCounter(MetricJobProcessed, map[string]string{"status": "failed"})
	return nil
}

func (w *DatabaseJobWorker) recordQueueDepth() {
	for _, status := range []string{models.JobStatusPending, models.JobStatusProcessing, models.JobStatusFailed} {
		count, err := w.jobRepo.CountByStatus(status)
		if err != nil {
			continue
		}
		w.metrics.RecordGauge(MetricQueueDepth, float64(count), map[string]string{"status": status})
	}
}

// MessageConsumerInterface is satisfied by *amqp.Client
type MessageConsumerInterface interface {
	Consume(ctx context.Context, handler func(ctx context.Context, body []byte) error) error
}

// AMQPJobWorker runs jobs delivered by the broker. Malformed messages are
// dropped, retryable failures are requeued and everything else is acked.
type AMQPJobWorker struct {
	consumer    MessageConsumerInterface
	handler     NotificationJobHandlerInterface
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
	logger      *slog.Logger
}

func NewAMQPJobWorker(
	consumer MessageConsumerInterface,
	handler NotificationJobHandlerInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	l *slog.Logger,
) *AMQPJobWorker {
	return &AMQPJobWorker{
		consumer:    consumer,
		handler:     handler,
		auditLogger: auditLogger,
		metrics:     metrics,
		logger:      logger.WithComponent(l, "notification_consumer"),
	}
}

func (w *AMQPJobWorker) Run(ctx context.Context) error {
	err := w.consumer.Consume(ctx, w.HandleMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *AMQPJobWorker) HandleMessage(ctx context.Context, body []byte) error {
	msg, err := amqp.NotificationMessageFromJSON(body)
	if err != nil {
		return err
	}

	job := msg.Job()
	startTime := time.Now()
	result, err := w.handler.Process(ctx, job)
	duration := time.Since(startTime)
	w.metrics.RecordProcessingTime(MetricJobProcessing, duration)

	switch {
	case err == nil:
		w.auditLogger.LogJobProcessed(ctx, job.ID, result, 0, duration.Milliseconds())
		w.metrics.IncrementCounter(MetricJobProcessed, map[string]string{"status": "success"})
		return nil
	case errors.Is(err, ErrPermanentJobFailure):
		w.auditLogger.LogJobFailed(ctx, job.ID, result, 0)
		w.metrics.IncrementCounter(MetricJobProcessed, map[string]string{"status": "failed"})
		return nil
	default:
		w.metrics.IncrementCounter(MetricJobRetry, nil)
		return err
	}
}
