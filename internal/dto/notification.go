package dto

import (
	"time"

	"finance-tracker/internal/models"
)

type NotificationListQuery struct {
	Unread   bool `query:"unread"`
	Page     int  `query:"page" validate:"gte=0"`
	PageSize int  `query:"page_size" validate:"gte=0"`
}

type NotificationResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewNotificationResponses(notifications []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:               n.ID.String(),
			Title:            n.Title,
			Message:          n.Message,
			NotificationType: n.NotificationType,
			IsRead:           n.IsRead,
			CreatedAt:        n.CreatedAt,
		})
	}
	return out
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
