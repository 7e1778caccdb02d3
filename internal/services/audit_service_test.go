package services

import (
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories/repository_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuditServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *repository_mocks.MockAuditLogRepositoryInterface
	service  AuditServiceInterface
}

func (s *AuditServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.service = NewAuditService(s.mockRepo, nil)
}

func (s *AuditServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}

func (s *AuditServiceTestSuite) TestRecord() {
	userID := uuid.New()

	s.mockRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(entry *models.AuditLog) error {
		s.Equal(&userID, entry.UserID)
		s.Equal(models.AuditActionLogin, entry.Action)
		s.Equal(models.AuditResourceAuth, entry.Resource)
		s.Equal(userID.String(), entry.ResourceID)
		s.Equal("10.0.0.1", entry.IPAddress)
		s.Equal("curl/8.0", entry.UserAgent)
		s.Equal("web", entry.Metadata["channel"])
		return nil
	})

	s.service.Record(&userID, models.AuditActionLogin, models.AuditResourceAuth, "10.0.0.1", "curl/8.0",
		map[string]interface{}{"channel": "web"})
}

func (s *AuditServiceTestSuite) TestRecord_AnonymousAndRepoFailureSwallowed() {
	s.mockRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(entry *models.AuditLog) error {
		s.Nil(entry.UserID)
		s.Empty(entry.ResourceID)
		return errors.New("db down")
	})

	s.NotPanics(func() {
		s.service.Record(nil, models.AuditActionFailedLogin, models.AuditResourceAuth, "", "", nil)
	})
}

func (s *AuditServiceTestSuite) TestGetUserActivity() {
	userID := uuid.New()
	logs := []*models.AuditLog{{Action: models.AuditActionLogin}, {Action: models.AuditActionLogout}}

	s.Run("returns repository page", func() {
		s.mockRepo.EXPECT().ListForUser(userID, 10, 5).Return(logs, int64(12), nil)

		got, total, err := s.service.GetUserActivity(userID, 10, 5)
		s.NoError(err)
		s.Equal(int64(12), total)
		s.Len(got, 2)
	})

	s.Run("rejects nil user", func() {
		_, _, err := s.service.GetUserActivity(uuid.Nil, 0, 10)
		s.ErrorIs(err, ErrInvalidUserID)
	})

	s.Run("wraps repository errors", func() {
		s.mockRepo.EXPECT().ListForUser(userID, 0, 10).Return(nil, int64(0), errors.New("boom"))

		_, _, err := s.service.GetUserActivity(userID, 0, 10)
		s.Error(err)
		s.Contains(err.Error(), "failed to get user activity")
	})
}

func (s *AuditServiceTestSuite) TestPurgeOlderThan() {
	s.Run("deletes by age", func() {
		s.mockRepo.EXPECT().DeleteCreatedBefore(gomock.Any()).DoAndReturn(func(cutoff time.Time) (int64, error) {
			s.WithinDuration(time.Now().Add(-90*24*time.Hour), cutoff, time.Minute)
			return 7, nil
		})

		deleted, err := s.service.PurgeOlderThan(90 * 24 * time.Hour)
		s.NoError(err)
		s.Equal(int64(7), deleted)
	})

	s.Run("rejects non-positive retention", func() {
		_, err := s.service.PurgeOlderThan(0)
		s.Error(err)
	})
}
