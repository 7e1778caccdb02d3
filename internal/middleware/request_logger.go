package middleware

import (
	"log/slog"
	"time"

	"finance-tracker/internal/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs the start and the end of every request. The end record
// is logged at error level for 5xx, warn for 4xx and info otherwise.
func RequestLogger(l *slog.Logger) echo.MiddlewareFunc {
	l = logger.WithComponent(l, "http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			l.DebugContext(req.Context(), "request started",
				"method", req.Method,
				"path", req.URL.Path,
				"remote_addr", c.RealIP(),
				logger.FieldTraceID, GetTraceID(c))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			l.Log(req.Context(), level, "request completed",
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				logger.FieldTraceID, GetTraceID(c))

			return nil
		}
	}
}
