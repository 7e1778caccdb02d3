package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/dto"
	apierrors "finance-tracker/internal/errors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestNotificationHandler(t *testing.T) {
	suite.Run(t, new(NotificationHandlerSuite))
}

type NotificationHandlerSuite struct {
	suite.Suite
	ctrl                *gomock.Controller
	notificationService *service_mocks.MockNotificationServiceInterface
	handler             *NotificationHandler
	e                   *echo.Echo
	user                *models.User
}

func (s *NotificationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.notificationService = service_mocks.NewMockNotificationServiceInterface(s.ctrl)
	s.handler = NewNotificationHandler(s.notificationService)
	s.e = echo.New()
	s.e.Validator = NewValidator()
	s.user = &models.User{ID: uuid.New(), Username: "ana"}
}

func (s *NotificationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *NotificationHandlerSuite) withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func (s *NotificationHandlerSuite) TestListNotifications() {
	notification := &models.Notification{
		ID:               uuid.New(),
		UserID:           s.user.ID,
		Title:            "Goal Completed",
		Message:          "Congratulations!",
		NotificationType: models.NotificationTypeGoalMilestone,
		CreatedAt:        time.Now(),
	}

	s.notificationService.EXPECT().List(s.user.ID, gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, q dto.NotificationListQuery) (*dto.Page[dto.NotificationResponse], error) {
			s.True(q.Unread)
			s.Equal(5, q.PageSize)
			page := dto.NewPage(dto.NewNotificationResponses([]*models.Notification{notification}), 1, dto.PageQuery{Page: 1, PageSize: 5})
			return &page, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/?unread=true&page_size=5", nil)
	c, rec := newAuthedContext(s.e, req, s.user)

	s.Require().NoError(s.handler.ListNotifications(c))
	s.Equal(http.StatusOK, rec.Code)

	var page dto.Page[dto.NotificationResponse]
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &page))
	s.Equal(int64(1), page.Count)
	s.Nil(page.Next)
	s.Require().Len(page.Results, 1)
	s.Equal(models.NotificationTypeGoalMilestone, page.Results[0].NotificationType)
	s.False(page.Results[0].IsRead)
}

func (s *NotificationHandlerSuite) TestMarkRead() {
	s.Run("marked", func() {
		id := uuid.New()
		s.notificationService.EXPECT().MarkRead(s.user.ID, id).Return(nil)

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodPost, "/", nil), s.user)
		s.withID(c, id.String())

		s.Require().NoError(s.handler.MarkRead(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "Notification marked as read")
	})

	s.Run("someone else's", func() {
		id := uuid.New()
		s.notificationService.EXPECT().MarkRead(s.user.ID, id).Return(repositories.ErrNotificationNotFound)

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodPost, "/", nil), s.user)
		s.withID(c, id.String())

		s.Require().NoError(s.handler.MarkRead(c))
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal(string(apierrors.NotificationNotFound), decodeErrorResponse(s.T(), rec).Error.Code)
	})
}

func (s *NotificationHandlerSuite) TestMarkAllReadAndUnreadCount() {
	s.Run("mark all", func() {
		s.notificationService.EXPECT().MarkAllRead(s.user.ID).Return(int64(4), nil)

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodPost, "/", nil), s.user)

		s.Require().NoError(s.handler.MarkAllRead(c))
		s.JSONEq(`{"updated":4}`, rec.Body.String())
	})

	s.Run("unread count", func() {
		s.notificationService.EXPECT().UnreadCount(s.user.ID).Return(int64(2), nil)

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodGet, "/", nil), s.user)

		s.Require().NoError(s.handler.UnreadCount(c))
		s.JSONEq(`{"count":2}`, rec.Body.String())
	})

	s.Run("count failure", func() {
		s.notificationService.EXPECT().UnreadCount(s.user.ID).Return(int64(0), errors.New("db down"))

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodGet, "/", nil), s.user)

		s.Require().NoError(s.handler.UnreadCount(c))
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *NotificationHandlerSuite) TestDeleteNotification() {
	id := uuid.New()
	s.notificationService.EXPECT().Delete(s.user.ID, id).Return(nil)

	c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodDelete, "/", nil), s.user)
	s.withID(c, id.String())

	s.Require().NoError(s.handler.DeleteNotification(c))
	s.Equal(http.StatusNoContent, rec.Code)
}
