package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"finance-tracker/internal/errors"
	"finance-tracker/internal/logger"

	"github.com/labstack/echo/v4"
)

// PanicRecovery turns a handler panic into a SYSTEM_001 response and logs
// the stack. http.ErrAbortHandler is re-raised so the server can abort the
// connection.
func PanicRecovery(l *slog.Logger) echo.MiddlewareFunc {
	l = logger.WithComponent(l, "http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				req := c.Request()
				l.ErrorContext(req.Context(), "panic recovered",
					logger.FieldTraceID, traceID,
					"panic", fmt.Sprint(r),
					"method", req.Method,
					"path", req.URL.Path,
					"stack", string(debug.Stack()))

				if c.Response().Committed {
					return
				}

				body := errors.NewErrorResponse(errors.SystemInternalError, traceID)
				if sendErr := c.JSON(http.StatusInternalServerError, body); sendErr != nil {
					err = sendErr
				}
			}()

			return next(c)
		}
	}
}
