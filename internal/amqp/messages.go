package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("invalid notification message")

// NotificationMessage is the wire form of a notification job
type NotificationMessage struct {
	JobID            uuid.UUID `json:"job_id"`
	UserID           uuid.UUID `json:"user_id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type"`
	Priority         int       `json:"priority"`
	Timestamp        time.Time `json:"timestamp"`
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes a delivery body. A message without a
// user or title is rejected with ErrInvalidMessage.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidMessage)
	}
	if msg.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidMessage)
	}
	return &msg, nil
}

func NewNotificationMessage(job *models.NotificationJob) *NotificationMessage {
	return &NotificationMessage{
		JobID:            job.ID,
		UserID:           job.UserID,
		Title:            job.Title,
		Message:          job.Message,
		NotificationType: job.NotificationType,
		Priority:         job.Priority,
		Timestamp:        time.Now(),
	}
}

// Job rebuilds the job the message was published for. Broker-delivered
// jobs carry no retry state; redelivery is the broker's business.
func (m *NotificationMessage) Job() *models.NotificationJob {
	return &models.NotificationJob{
		ID:               m.JobID,
		UserID:           m.UserID,
		Title:            m.Title,
		Message:          m.Message,
		NotificationType: m.NotificationType,
		Priority:         m.Priority,
		Status:           models.JobStatusProcessing,
		CreatedAt:        m.Timestamp,
	}
}
