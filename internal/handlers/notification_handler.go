package handlers

import (
	"net/http"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NotificationHandler exposes the caller's in-app notifications
type NotificationHandler struct {
	notificationService services.NotificationServiceInterface
}

func NewNotificationHandler(notificationService services.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns notifications newest first. unread=true keeps
// only unread ones.
// @Summary List notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "Only unread"
// @Param page query int false "1-based page number"
// @Param page_size query int false "Results per page"
// @Success 200 {object} dto.Page[dto.NotificationResponse]
// @Router /notifications/ [get]
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.NotificationListQuery
	if ok, err := bindAndValidate(c, &query); !ok {
		return err
	}

	page, err := h.notificationService.List(userID, query)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.NotificationNotFound)
	}

	if err := h.notificationService.MarkRead(userID, id); err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.NotificationNotFound)
	}

	if err := h.notificationService.Delete(userID, id); err != nil {
		return SendServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
