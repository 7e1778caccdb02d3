package services

import (
	"fmt"
	"strings"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

type notificationService struct {
	repo       repositories.NotificationRepositoryInterface
	pagination config.PaginationConfig
}

// NewNotificationService creates a new NotificationServiceInterface instance
func NewNotificationService(
	repo repositories.NotificationRepositoryInterface,
	pagination config.PaginationConfig,
) NotificationServiceInterface {
	if pagination.DefaultPageSize <= 0 {
		pagination.DefaultPageSize = 10
	}
	if pagination.MaxPageSize <= 0 {
		pagination.MaxPageSize = 100
	}
	return &notificationService{repo: repo, pagination: pagination}
}

// List returns the user's notifications, newest first
func (s *notificationService) List(userID uuid.UUID, query dto.NotificationListQuery) (*dto.Page[dto.NotificationResponse], error) {
	page := dto.PageQuery{Page: query.Page, PageSize: query.PageSize}.
		Normalize(s.pagination.DefaultPageSize, s.pagination.MaxPageSize)

	notifications, total, err := s.repo.List(userID, query.Unread, page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	result := dto.NewPage(dto.NewNotificationResponses(notifications), total, page)
	return &result, nil
}

func (s *notificationService) MarkRead(userID, id uuid.UUID) error {
	return s.repo.MarkRead(userID, id)
}

func (s *notificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(userID)
}

func (s *notificationService) Delete(userID, id uuid.UUID) error {
	return s.repo.Delete(userID, id)
}

// Notify stores an in-app notification. Unknown types fall back to SYSTEM.
func (s *notificationService) Notify(userID uuid.UUID, title, message, notificationType string) (*models.Notification, error) {
	if !models.IsValidNotificationType(notificationType) {
		notificationType = models.NotificationTypeSystem
	}

	notification := &models.Notification{
		UserID:           userID,
		Title:            strings.TrimSpace(title),
		Message:          message,
		NotificationType: notificationType,
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}
