package middleware

import (
	stderrors "errors"

	"finance-tracker/internal/errors"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// RequireAuth resolves the Authorization header to a user. Both
// "Bearer <jwt>" and "Token <key>" are accepted; revoked access tokens and
// locked accounts are rejected.
func RequireAuth(tokenService services.TokenServiceInterface, authService services.AuthServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			scheme, credential, err := tokenService.ParseAuthorizationHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			authenticate := authService.AuthenticateKey
			if scheme == services.SchemeBearer {
				authenticate = authService.AuthenticateAccessToken
			}

			user, err := authenticate(credential)
			if err != nil {
				return authError(c, err)
			}

			c.Set(handlers.ContextKeyUser, user)
			c.Set(handlers.ContextKeyUserID, user.ID)
			if scheme == services.SchemeBearer {
				c.Set(handlers.ContextKeyAccessToken, credential)
			}

			return next(c)
		}
	}
}

func authError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrExpiredToken):
		return handlers.SendError(c, errors.AuthExpiredToken)
	case stderrors.Is(err, services.ErrTokenRevoked):
		return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Token has been revoked"))
	case stderrors.Is(err, services.ErrAccountLocked):
		return handlers.SendError(c, errors.AuthAccountLocked)
	case stderrors.Is(err, services.ErrInvalidToken),
		stderrors.Is(err, services.ErrInvalidIssuer),
		stderrors.Is(err, services.ErrInvalidTokenType),
		stderrors.Is(err, services.ErrEmptyToken):
		return handlers.SendError(c, errors.AuthInvalidTokenFormat)
	default:
		return handlers.SendSystemError(c, err)
	}
}
