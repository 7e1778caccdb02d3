package handlers

import (
	"fmt"
	"strings"

	"finance-tracker/internal/errors"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// getUserIDFromContext returns the id RequireAuth stored on the request
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.UUID{}, ErrUnauthorized
	}
	return userID, nil
}

func getUserFromContext(c echo.Context) (*models.User, error) {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func getAccessTokenFromContext(c echo.Context) string {
	token, _ := c.Get(ContextKeyAccessToken).(string)
	return token
}

// bindAndValidate binds the request body into req and runs the validator
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return false, SendValidationError(c, err)
	}
	return true, nil
}

func getClientIP(c echo.Context) string {
	xff := c.Request().Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.Request().Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return c.RealIP()
}
