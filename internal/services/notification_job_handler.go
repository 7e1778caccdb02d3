package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finance-tracker/internal/logger"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
)

// ErrPermanentJobFailure marks a job that must not be retried
var ErrPermanentJobFailure = errors.New("permanent job failure")

type notificationJobHandler struct {
	userRepo      repositories.UserRepositoryInterface
	notifications NotificationServiceInterface
	mailer        MailerInterface
	logger        *slog.Logger
}

// NewNotificationJobHandler creates a new NotificationJobHandlerInterface instance
func NewNotificationJobHandler(
	userRepo repositories.UserRepositoryInterface,
	notifications NotificationServiceInterface,
	mailer MailerInterface,
	l *slog.Logger,
) NotificationJobHandlerInterface {
	return &notificationJobHandler{
		userRepo:      userRepo,
		notifications: notifications,
		mailer:        mailer,
		logger:        logger.WithComponent(l, "notification_job_handler"),
	}
}

// Handle runs the job and reports the outcome as text. It never fails.
func (h *notificationJobHandler) Handle(ctx context.Context, job *models.NotificationJob) string {
	result, _ := h.Process(ctx, job)
	return result
}

// Process stores the in-app notification and, when the user opted in,
// emails it. Errors before the notification is stored are retryable. A
// missing user or a failed email wrap ErrPermanentJobFailure, since
// retrying after the row exists would duplicate it.
func (h *notificationJobHandler) Process(ctx context.Context, job *models.NotificationJob) (string, error) {
	user, err := h.userRepo.GetByID(job.UserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Sprintf("User %s not found", job.UserID), fmt.Errorf("%w: %v", ErrPermanentJobFailure, err)
	}
	if err != nil {
		return errorResult(err), err
	}

	notificationType := job.NotificationType
	if notificationType == "" {
		notificationType = models.NotificationTypeSystem
	}
	if _, err := h.notifications.Notify(user.ID, job.Title, job.Message, notificationType); err != nil {
		return errorResult(err), err
	}

	if !user.EmailNotifications {
		h.logger.DebugContext(ctx, "email skipped, user opted out", logger.FieldUserID, user.ID)
		return fmt.Sprintf("Notification sent to %s", user.Email), nil
	}

	if err := h.mailer.Send(ctx, user.Email, job.Title, job.Message); err != nil {
		return errorResult(err), fmt.Errorf("%w: %v", ErrPermanentJobFailure, err)
	}

	return fmt.Sprintf("Notification sent to %s", user.Email), nil
}

func errorResult(err error) string {
	return fmt.Sprintf("Error sending notification: %s", err)
}
