package services

import (
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/repositories/repository_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *repository_mocks.MockNotificationRepositoryInterface
	service NotificationServiceInterface
	userID  uuid.UUID
}

func (s *NotificationServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockNotificationRepositoryInterface(s.ctrl)
	s.service = NewNotificationService(s.repo, config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 50})
	s.userID = uuid.New()
}

func (s *NotificationServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (s *NotificationServiceTestSuite) TestList() {
	s.Run("defaults page size", func() {
		rows := []*models.Notification{{ID: uuid.New(), Title: "Hello", NotificationType: models.NotificationTypeSystem}}
		s.repo.EXPECT().List(s.userID, true, 0, 20).Return(rows, int64(1), nil)

		page, err := s.service.List(s.userID, dto.NotificationListQuery{Unread: true})
		s.Require().NoError(err)
		s.Equal(int64(1), page.Count)
		s.Nil(page.Next)
		s.Require().Len(page.Results, 1)
		s.Equal("Hello", page.Results[0].Title)
	})

	s.Run("caps page size", func() {
		s.repo.EXPECT().List(s.userID, false, 50, 50).Return(nil, int64(120), nil)

		page, err := s.service.List(s.userID, dto.NotificationListQuery{Page: 2, PageSize: 500})
		s.Require().NoError(err)
		s.NotNil(page.Results)
		s.Require().NotNil(page.Previous)
		s.Equal(1, *page.Previous)
	})
}

func (s *NotificationServiceTestSuite) TestMarkRead_NotFound() {
	id := uuid.New()
	s.repo.EXPECT().MarkRead(s.userID, id).Return(repositories.ErrNotificationNotFound)

	s.ErrorIs(s.service.MarkRead(s.userID, id), repositories.ErrNotificationNotFound)
}

func (s *NotificationServiceTestSuite) TestMarkAllReadAndCount() {
	s.repo.EXPECT().MarkAllRead(s.userID).Return(int64(4), nil)
	s.repo.EXPECT().CountUnread(s.userID).Return(int64(0), nil)

	updated, err := s.service.MarkAllRead(s.userID)
	s.NoError(err)
	s.Equal(int64(4), updated)

	count, err := s.service.UnreadCount(s.userID)
	s.NoError(err)
	s.Zero(count)
}

func (s *NotificationServiceTestSuite) TestNotify_UnknownTypeFallsBackToSystem() {
	s.repo.EXPECT().Create(gomock.Any()).Return(nil)

	n, err := s.service.Notify(s.userID, " Heads up ", "body", "WHATEVER")
	s.Require().NoError(err)
	s.Equal(models.NotificationTypeSystem, n.NotificationType)
	s.Equal("Heads up", n.Title)
	s.Equal(s.userID, n.UserID)
}
