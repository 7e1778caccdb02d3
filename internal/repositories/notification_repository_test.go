package repositories

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestNotificationRepository(t *testing.T) {
	suite.Run(t, new(NotificationRepositorySuite))
}

type NotificationRepositorySuite struct {
	suite.Suite
	db    *database.DB
	repo  NotificationRepositoryInterface
	jobs  NotificationJobRepositoryInterface
	owner *models.User
}

func (s *NotificationRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewNotificationRepository(s.db.DB)
	s.jobs = NewNotificationJobRepository(s.db.DB)
	s.owner = database.CreateTestUser(s.T(), s.db, "notify@example.com")
}

func (s *NotificationRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *NotificationRepositorySuite) createNotification(title string) *models.Notification {
	n := &models.Notification{
		UserID:           s.owner.ID,
		Title:            title,
		Message:          title + " message",
		NotificationType: models.NotificationTypeSystem,
	}
	s.Require().NoError(s.repo.Create(n))
	return n
}

func (s *NotificationRepositorySuite) TestReadState() {
	first := s.createNotification("first")
	s.createNotification("second")
	s.createNotification("third")

	count, err := s.repo.CountUnread(s.owner.ID)
	s.NoError(err)
	s.Equal(int64(3), count)

	s.NoError(s.repo.MarkRead(s.owner.ID, first.ID))
	s.NoError(s.repo.MarkRead(s.owner.ID, first.ID), "marking twice is harmless")

	unread, total, err := s.repo.List(s.owner.ID, true, 0, 10)
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(unread, 2)

	updated, err := s.repo.MarkAllRead(s.owner.ID)
	s.NoError(err)
	s.Equal(int64(2), updated)

	count, err = s.repo.CountUnread(s.owner.ID)
	s.NoError(err)
	s.Zero(count)

	s.Equal(ErrNotificationNotFound, s.repo.MarkRead(s.owner.ID, uuid.New()))
}

func (s *NotificationRepositorySuite) TestListAndDelete() {
	n := s.createNotification("only")
	other := database.CreateTestUser(s.T(), s.db, "someone@example.com")

	items, total, err := s.repo.List(other.ID, false, 0, 10)
	s.NoError(err)
	s.Zero(total)
	s.Empty(items)

	s.Equal(ErrNotificationNotFound, s.repo.Delete(other.ID, n.ID))
	s.NoError(s.repo.Delete(s.owner.ID, n.ID))

	_, err = s.repo.GetByID(s.owner.ID, n.ID)
	s.Equal(ErrNotificationNotFound, err)
}

func (s *NotificationRepositorySuite) TestJobQueue() {
	normal := &models.NotificationJob{UserID: s.owner.ID, Title: "normal", Message: "m", NotificationType: models.NotificationTypeSystem}
	urgent := &models.NotificationJob{UserID: s.owner.ID, Title: "urgent", Message: "m", NotificationType: models.NotificationTypeGoalDeadline, Priority: models.JobPriorityHigh}
	later := &models.NotificationJob{UserID: s.owner.ID, Title: "later", Message: "m", NotificationType: models.NotificationTypeSystem, ScheduledAt: time.Now().Add(time.Hour)}
	for _, job := range []*models.NotificationJob{normal, urgent, later} {
		s.Require().NoError(s.jobs.Enqueue(job))
	}

	pending, err := s.jobs.FetchPending(10)
	s.NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("urgent", pending[0].Title)

	s.NoError(s.jobs.MarkProcessing(urgent.ID))
	s.Equal(ErrJobNotFound, s.jobs.MarkProcessing(urgent.ID), "a job is claimed once")
	s.NoError(s.jobs.MarkCompleted(urgent.ID, "Notification sent to notify@example.com"))

	s.NoError(s.jobs.MarkProcessing(normal.ID))
	s.NoError(s.jobs.IncrementRetry(normal.ID, "smtp down"))

	var retried models.NotificationJob
	s.NoError(s.db.Where("id = ?", normal.ID).First(&retried).Error)
	s.Equal(1, retried.RetryCount)
	s.Equal(models.JobStatusPending, retried.Status)
	s.Equal("smtp down", retried.ErrorMessage)
	s.True(retried.ScheduledAt.After(time.Now()))

	s.NoError(s.jobs.MarkFailed(normal.ID, "gave up"))

	failed, err := s.jobs.CountByStatus(models.JobStatusFailed)
	s.NoError(err)
	s.Equal(int64(1), failed)

	cleaned, err := s.jobs.CleanupCompleted(time.Now().Add(time.Minute))
	s.NoError(err)
	s.Equal(int64(1), cleaned)

	s.Equal(ErrJobNotFound, s.jobs.IncrementRetry(uuid.New(), "x"))
}
