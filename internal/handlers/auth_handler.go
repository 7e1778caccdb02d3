package handlers

import (
	"net/http"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AuthServiceInterface
	media       services.MediaStorageInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface, media services.MediaStorageInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		media:       media,
	}
}

func (h *AuthHandler) sessionResponse(session *dto.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token: session.Token,
		JWT:   session.JWT,
		User:  dto.NewUserResponse(session.User, h.media.URL),
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "User created, session issued"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Field errors, including a taken email or username"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /auth/register/ [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	session, err := h.authService.Register(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, h.sessionResponse(session))
}

// Login handles user authentication
// @Summary Login user
// @Description Identifier is a username or an email address. Failures never say which part was wrong.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} errors.ErrorResponse "AUTH_001 - Invalid credentials"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006 - Account locked"
// @Router /auth/login/ [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}

	session, err := h.authService.Login(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, h.sessionResponse(session))
}

// RefreshToken rotates the refresh token and issues a new pair
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.JWTPair "New token pair"
// @Failure 401 {object} errors.ErrorResponse "AUTH_007 - Invalid refresh token"
// @Router /auth/token/refresh/ [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	pair, err := h.authService.RefreshTokens(req.Refresh, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pair)
}

// Logout revokes every credential of the caller
// @Summary Logout user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} MessageResponse "Logout successful"
// @Router /auth/logout/ [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := h.authService.Logout(userID, getAccessTokenFromContext(c), getClientIP(c), c.Request().UserAgent()); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := getUserFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user, h.media.URL))
}
