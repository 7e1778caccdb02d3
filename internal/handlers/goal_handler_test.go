package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/dto"
	apierrors "finance-tracker/internal/errors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/repositories/repository_mocks"
	"finance-tracker/internal/services"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestGoalHandler(t *testing.T) {
	suite.Run(t, new(GoalHandlerSuite))
}

type GoalHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	goalService *service_mocks.MockGoalServiceInterface
	handler     *GoalHandler
	e           *echo.Echo
	user        *models.User
	now         time.Time
}

func (s *GoalHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.goalService = service_mocks.NewMockGoalServiceInterface(s.ctrl)
	s.now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	s.handler = NewGoalHandler(s.goalService)
	s.handler.now = func() time.Time { return s.now }
	s.e = echo.New()
	s.e.Validator = NewValidator()
	s.user = &models.User{ID: uuid.New(), Username: "ana"}
}

func (s *GoalHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GoalHandlerSuite) goal(current, target int64) *models.Goal {
	g := &models.Goal{
		ID:            uuid.New(),
		UserID:        s.user.ID,
		Title:         "Emergency fund",
		TargetAmount:  decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Deadline:      time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC),
		Status:        models.GoalStatusInProgress,
	}
	g.ReevaluateStatus()
	return g
}

func (s *GoalHandlerSuite) progressContext(id, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := newJSONRequest(http.MethodPost, "/api/goals/"+id+"/update_progress/", body)
	c, rec := newAuthedContext(s.e, req, s.user)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func (s *GoalHandlerSuite) TestListGoals() {
	s.Run("status filter", func() {
		s.goalService.EXPECT().List(s.user.ID, models.GoalStatusCompleted).Return([]*models.Goal{s.goal(100, 100)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/goals/?status=completed", nil)
		c, rec := newAuthedContext(s.e, req, s.user)

		s.Require().NoError(s.handler.ListGoals(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp []dto.GoalResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp, 1)
		s.Equal(models.GoalStatusCompleted, resp[0].Status)
		s.Equal(float64(100), resp[0].ProgressPercentage)
	})

	s.Run("unknown status", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/goals/?status=archived", nil)
		c, rec := newAuthedContext(s.e, req, s.user)

		s.Require().NoError(s.handler.ListGoals(c))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *GoalHandlerSuite) TestCreateGoal() {
	s.Run("created with derived fields", func() {
		s.goalService.EXPECT().Create(s.user.ID, gomock.Any()).
			DoAndReturn(func(_ uuid.UUID, req dto.GoalRequest) (*models.Goal, error) {
				s.Equal(dto.Amount("1000"), req.TargetAmount)
				return s.goal(0, 1000), nil
			})

		req := newJSONRequest(http.MethodPost, "/api/goals/",
			`{"title":"Emergency fund","target_amount":1000,"deadline":"2024-06-11"}`)
		c, rec := newAuthedContext(s.e, req, s.user)

		s.Require().NoError(s.handler.CreateGoal(c))
		s.Equal(http.StatusCreated, rec.Code)

		var resp dto.GoalResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("0.00", resp.CurrentAmount)
		s.Equal("1000.00", resp.TargetAmount)
		s.Equal(10, resp.DaysRemaining)
		s.Equal(models.GoalStatusInProgress, resp.Status)
	})

	s.Run("past deadline from service", func() {
		s.goalService.EXPECT().Create(s.user.ID, gomock.Any()).
			Return(nil, models.ValidationErrors{"deadline": "Deadline cannot be in the past"})

		req := newJSONRequest(http.MethodPost, "/api/goals/",
			`{"title":"Old","target_amount":"10","deadline":"2020-01-01"}`)
		c, rec := newAuthedContext(s.e, req, s.user)

		s.Require().NoError(s.handler.CreateGoal(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal([]string{"Deadline cannot be in the past"}, decodeErrorResponse(s.T(), rec).Error.Fields["deadline"])
	})
}

func (s *GoalHandlerSuite) TestUpdateProgress() {
	s.Run("applies signed amount", func() {
		goal := s.goal(350, 1000)
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, goal.ID, "-50.25").Return(goal, nil)

		c, rec := s.progressContext(goal.ID.String(), `{"amount":"-50.25"}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"current_amount":"350.00"`)
	})

	s.Run("numeric amount", func() {
		goal := s.goal(10, 1000)
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, goal.ID, "10").Return(goal, nil)

		c, rec := s.progressContext(goal.ID.String(), `{"amount":10}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("missing amount is passed as empty", func() {
		goal := s.goal(10, 1000)
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, goal.ID, "").Return(goal, nil)

		c, rec := s.progressContext(goal.ID.String(), `{}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("non-numeric amount", func() {
		id := uuid.New()
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, id, "abc").Return(nil, services.ErrInvalidAmount)

		c, rec := s.progressContext(id.String(), `{"amount":"abc"}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusBadRequest, rec.Code)

		resp := decodeErrorResponse(s.T(), rec)
		s.Equal(string(apierrors.GoalInvalidAmount), resp.Error.Code)
		s.Equal("Invalid amount value", resp.Error.Message)
	})

	s.Run("huge exponent amount never reaches the goal", func() {
		repo := repository_mocks.NewMockGoalRepositoryInterface(s.ctrl)
		handler := NewGoalHandler(services.NewGoalService(repo, nil, nil, nil))

		id := uuid.New()
		c, rec := s.progressContext(id.String(), `{"amount":"1e300000000"}`)

		s.Require().NoError(handler.UpdateProgress(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(apierrors.GoalInvalidAmount), decodeErrorResponse(s.T(), rec).Error.Code)
	})

	s.Run("unparseable body", func() {
		id := uuid.New()
		c, rec := s.progressContext(id.String(), `{"amount":`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("Invalid amount value", decodeErrorResponse(s.T(), rec).Error.Message)
	})

	s.Run("other user's goal", func() {
		id := uuid.New()
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, id, "5").Return(nil, repositories.ErrGoalNotFound)

		c, rec := s.progressContext(id.String(), `{"amount":"5"}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("concurrent writers", func() {
		id := uuid.New()
		s.goalService.EXPECT().UpdateProgress(gomock.Any(), s.user.ID, id, "5").Return(nil, services.ErrGoalConflict)

		c, rec := s.progressContext(id.String(), `{"amount":"5"}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal(string(apierrors.GoalConflict), decodeErrorResponse(s.T(), rec).Error.Code)
	})

	s.Run("malformed id", func() {
		c, rec := s.progressContext("nope", `{"amount":"5"}`)

		s.Require().NoError(s.handler.UpdateProgress(c))
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *GoalHandlerSuite) TestPatchAndDeleteGoal() {
	goal := s.goal(100, 1000)

	s.Run("patch", func() {
		s.goalService.EXPECT().Patch(s.user.ID, goal.ID, gomock.Any()).
			DoAndReturn(func(_, _ uuid.UUID, patch dto.GoalPatch) (*models.Goal, error) {
				s.Require().NotNil(patch.Title)
				s.Nil(patch.Deadline)
				goal.Title = strings.TrimSpace(*patch.Title)
				return goal, nil
			})

		req := newJSONRequest(http.MethodPatch, "/", `{"title":"Rainy day"}`)
		c, rec := newAuthedContext(s.e, req, s.user)
		c.SetParamNames("id")
		c.SetParamValues(goal.ID.String())

		s.Require().NoError(s.handler.PatchGoal(c))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "Rainy day")
	})

	s.Run("delete", func() {
		s.goalService.EXPECT().Delete(s.user.ID, goal.ID).Return(nil)

		c, rec := newAuthedContext(s.e, httptest.NewRequest(http.MethodDelete, "/", nil), s.user)
		c.SetParamNames("id")
		c.SetParamValues(goal.ID.String())

		s.Require().NoError(s.handler.DeleteGoal(c))
		s.Equal(http.StatusNoContent, rec.Code)
	})
}
