package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/config"
	apierrors "finance-tracker/internal/errors"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/models"
	"finance-tracker/internal/services"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	tokenService services.TokenServiceInterface
	authService  *service_mocks.MockAuthServiceInterface
	e            *echo.Echo
	user         *models.User
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.tokenService = services.NewTokenService(&config.JWTConfig{
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "test-issuer",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	})
	s.authService = service_mocks.NewMockAuthServiceInterface(s.ctrl)
	s.e = echo.New()
	s.user = &models.User{ID: uuid.New(), Email: "ana@example.com", Username: "ana"}
}

func (s *AuthMiddlewareSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthMiddlewareSuite) serve(authHeader string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	if next == nil {
		next = func(c echo.Context) error {
			s.Fail("next handler must not be called")
			return nil
		}
	}

	s.Require().NoError(RequireAuth(s.tokenService, s.authService)(next)(c))
	return rec
}

func (s *AuthMiddlewareSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func (s *AuthMiddlewareSuite) TestBearerToken() {
	s.authService.EXPECT().AuthenticateAccessToken("jwt-value").Return(s.user, nil)

	rec := s.serve("Bearer jwt-value", func(c echo.Context) error {
		s.Equal(s.user, c.Get(handlers.ContextKeyUser))
		s.Equal(s.user.ID, c.Get(handlers.ContextKeyUserID))
		s.Equal("jwt-value", c.Get(handlers.ContextKeyAccessToken))
		return c.NoContent(http.StatusOK)
	})

	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestAPIKey() {
	s.authService.EXPECT().AuthenticateKey("0123abcd").Return(s.user, nil)

	rec := s.serve("token 0123abcd", func(c echo.Context) error {
		s.Equal(s.user.ID, c.Get(handlers.ContextKeyUserID))
		s.Nil(c.Get(handlers.ContextKeyAccessToken))
		return c.NoContent(http.StatusOK)
	})

	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	rec := s.serve("", nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthMissingToken), s.errorCode(rec))
}

func (s *AuthMiddlewareSuite) TestMalformedHeader() {
	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "jwt-without-scheme"} {
		s.Run(header, func() {
			rec := s.serve(header, nil)
			s.Equal(http.StatusUnauthorized, rec.Code)
			s.Equal(string(apierrors.AuthInvalidTokenFormat), s.errorCode(rec))
		})
	}
}

func (s *AuthMiddlewareSuite) TestAuthenticationFailures() {
	testCases := []struct {
		name   string
		err    error
		status int
		code   apierrors.ErrorCode
	}{
		{"expired", services.ErrExpiredToken, http.StatusUnauthorized, apierrors.AuthExpiredToken},
		{"revoked", services.ErrTokenRevoked, http.StatusUnauthorized, apierrors.AuthInvalidTokenFormat},
		{"invalid", services.ErrInvalidToken, http.StatusUnauthorized, apierrors.AuthInvalidTokenFormat},
		{"wrong type", services.ErrInvalidTokenType, http.StatusUnauthorized, apierrors.AuthInvalidTokenFormat},
		{"locked", services.ErrAccountLocked, http.StatusForbidden, apierrors.AuthAccountLocked},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, apierrors.SystemInternalError},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.authService.EXPECT().AuthenticateAccessToken("jwt-value").Return(nil, tc.err)

			rec := s.serve("Bearer jwt-value", nil)
			s.Equal(tc.status, rec.Code)
			s.Equal(string(tc.code), s.errorCode(rec))
		})
	}
}

func (s *AuthMiddlewareSuite) TestRevokedTokenDetail() {
	s.authService.EXPECT().AuthenticateAccessToken("jwt-value").Return(nil, services.ErrTokenRevoked)

	rec := s.serve("Bearer jwt-value", nil)

	var resp apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Contains(resp.Error.Details, "Token has been revoked")
}
