package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"finance-tracker/internal/errors"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/logger"
	"finance-tracker/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "API error responses by error code, route and status.",
	},
	[]string{"code", "endpoint", "status"},
)

// CustomHTTPErrorHandler renders errors that handlers returned instead of
// answering themselves: routing errors, binder failures, validation errors
// and domain sentinels. Anything else becomes a 500 with the cause logged.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	body, status := buildErrorResponse(err, traceID)
	req := c.Request()

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(req.Context(), level, "request failed",
		logger.FieldComponent, "http",
		logger.FieldTraceID, traceID,
		"code", body.Error.Code,
		"status", status,
		"method", req.Method,
		"path", req.URL.Path,
		logger.FieldError, err.Error())

	apiErrorsTotal.WithLabelValues(body.Error.Code, c.Path(), strconv.Itoa(status)).Inc()

	var sendErr error
	if req.Method == http.MethodHead {
		sendErr = c.NoContent(status)
	} else {
		sendErr = c.JSON(status, body)
	}
	if sendErr != nil {
		slog.Error("failed to send error response", logger.FieldTraceID, traceID, logger.FieldError, sendErr)
	}
}

func buildErrorResponse(err error, traceID string) (*errors.ErrorResponse, int) {
	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		code := mapHTTPStatusToErrorCode(echoErr.Code)
		opts := []errors.ErrorOption{}
		if echoErr.Code < 500 {
			opts = append(opts, errors.WithMessage(fmt.Sprintf("%v", echoErr.Message)))
		}
		return errors.NewErrorResponse(code, traceID, opts...), echoErr.Code
	}

	if fields := validation.FieldErrors(err); fields != nil {
		return errors.NewFieldValidationError(fields, traceID), http.StatusBadRequest
	}

	if code, ok := handlers.ErrorCodeFor(err); ok {
		resp := errors.NewErrorResponse(code, traceID)
		return resp, resp.GetHTTPStatus()
	}

	resp, _ := errors.WrapSystemError(err, traceID)
	return resp, http.StatusInternalServerError
}

func mapHTTPStatusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ValidationGeneral
	case http.StatusUnauthorized:
		return errors.AuthMissingToken
	case http.StatusForbidden:
		return errors.AuthInsufficientPermission
	case http.StatusNotFound:
		return errors.SystemNotFound
	case http.StatusMethodNotAllowed:
		return errors.SystemMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return errors.ValidationInvalidFile
	case http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return errors.ValidationInvalidFormat
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusInternalServerError:
		return errors.SystemInternalError
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	default:
		return errors.SystemUnexpectedError
	}
}
