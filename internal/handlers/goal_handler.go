package handlers

import (
	"net/http"
	"time"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GoalHandler handles savings goals
type GoalHandler struct {
	goalService services.GoalServiceInterface
	now         func() time.Time
}

func NewGoalHandler(goalService services.GoalServiceInterface) *GoalHandler {
	return &GoalHandler{goalService: goalService, now: time.Now}
}

// ListGoals returns the caller's goals, optionally filtered by status
// @Summary List goals
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Param status query string false "in_progress or completed"
// @Success 200 {array} dto.GoalResponse
// @Router /goals/ [get]
func (h *GoalHandler) ListGoals(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.GoalListQuery
	if ok, err := bindAndValidate(c, &query); !ok {
		return err
	}

	goals, err := h.goalService.List(userID, query.Status)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewGoalResponses(goals, h.now()))
}

// CreateGoal starts a goal at zero progress
// @Summary Create goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.GoalRequest true "Goal"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Empty title, non-positive target or past deadline"
// @Router /goals/ [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.GoalRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	goal, err := h.goalService.Create(userID, req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewGoalResponse(goal, h.now()))
}

func (h *GoalHandler) GetGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.GoalNotFound)
	}

	goal, err := h.goalService.Get(userID, id)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewGoalResponse(goal, h.now()))
}

func (h *GoalHandler) ReplaceGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.GoalNotFound)
	}

	var req dto.GoalRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	goal, err := h.goalService.Replace(userID, id, req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewGoalResponse(goal, h.now()))
}

func (h *GoalHandler) PatchGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.GoalNotFound)
	}

	var patch dto.GoalPatch
	if ok, err := bindAndValidate(c, &patch); !ok {
		return err
	}

	goal, err := h.goalService.Patch(userID, id, patch)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewGoalResponse(goal, h.now()))
}

func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.GoalNotFound)
	}

	if err := h.goalService.Delete(userID, id); err != nil {
		return SendServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateProgress adds a signed amount to the goal's progress
// @Summary Update goal progress
// @Description The result is clamped to [0, target]. Reaching the target completes the goal and queues a milestone notification.
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProgressRequest true "Signed amount"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} errors.ErrorResponse "GOAL_002 - Invalid amount value"
// @Failure 404 {object} errors.ErrorResponse "GOAL_001 - Goal not found"
// @Failure 409 {object} errors.ErrorResponse "GOAL_003 - Concurrent update, retry"
// @Router /goals/{id}/update_progress/ [post]
func (h *GoalHandler) UpdateProgress(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.GoalNotFound)
	}

	var req dto.UpdateProgressRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.GoalInvalidAmount, errors.WithMessage(services.ErrInvalidAmount.Error()))
	}

	goal, err := h.goalService.UpdateProgress(c.Request().Context(), userID, id, string(req.Amount))
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewGoalResponse(goal, h.now()))
}
