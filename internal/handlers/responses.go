package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/errors"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services"
	"finance-tracker/internal/validation"

	"github.com/labstack/echo/v4"
)

// Handlers report failures through the helpers below so every error body
// has the same envelope:
//
//	SendError            known client errors (4xx) with a code from internal/errors
//	SendValidationError  field-level failures, from the validator or the services
//	SendServiceError     anything a service returned; maps sentinels, else 500
//	SendSystemError      internal failures; the cause is logged, never returned

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"

	ContextKeyUser        = "user"
	ContextKeyUserID      = "user_id"
	ContextKeyAccessToken = "access_token"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

// MessageResponse is the body of endpoints that only confirm an action
type MessageResponse struct {
	Message string `json:"message"`
}

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	errorResponse := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendValidationError reports field errors. err is validator.ValidationErrors
// or models.ValidationErrors.
func SendValidationError(c echo.Context, err error) error {
	fields := validation.FieldErrors(err)
	if fields == nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	return c.JSON(http.StatusBadRequest, errors.NewFieldValidationError(fields, getTraceID(c)))
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internalErr := errors.WrapSystemError(err, traceID)

	slog.ErrorContext(c.Request().Context(), "request failed",
		"trace_id", traceID,
		"method", c.Request().Method,
		"path", c.Path(),
		"error", internalErr)

	return c.JSON(http.StatusInternalServerError, errorResponse)
}

// ErrorCodeFor maps a domain error to its API error code
func ErrorCodeFor(err error) (errors.ErrorCode, bool) {
	switch {
	case stderrors.Is(err, repositories.ErrUserNotFound):
		return errors.UserNotFound, true
	case stderrors.Is(err, repositories.ErrCategoryNotFound):
		return errors.CategoryNotFound, true
	case stderrors.Is(err, repositories.ErrTransactionNotFound):
		return errors.TransactionNotFound, true
	case stderrors.Is(err, repositories.ErrGoalNotFound):
		return errors.GoalNotFound, true
	case stderrors.Is(err, repositories.ErrNotificationNotFound):
		return errors.NotificationNotFound, true
	case stderrors.Is(err, services.ErrInvalidAmount):
		return errors.GoalInvalidAmount, true
	case stderrors.Is(err, services.ErrGoalConflict):
		return errors.GoalConflict, true
	case stderrors.Is(err, services.ErrInvalidCredentials):
		return errors.AuthInvalidCredentials, true
	case stderrors.Is(err, services.ErrAccountLocked):
		return errors.AuthAccountLocked, true
	case stderrors.Is(err, services.ErrInvalidRefreshToken):
		return errors.AuthInvalidRefreshToken, true
	case stderrors.Is(err, services.ErrInvalidMediaPath):
		return errors.ValidationInvalidFile, true
	}
	return "", false
}

// SendServiceError turns an error returned by a service into a response
func SendServiceError(c echo.Context, err error) error {
	if validation.FieldErrors(err) != nil {
		return SendValidationError(c, err)
	}

	if code, ok := ErrorCodeFor(err); ok {
		if code == errors.GoalInvalidAmount {
			return SendError(c, code, errors.WithMessage(err.Error()))
		}
		return SendError(c, code)
	}

	return SendSystemError(c, err)
}
