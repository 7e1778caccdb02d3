package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token has been revoked")
)

const (
	msgEmailTaken    = "A user with that email already exists."
	msgUsernameTaken = "A user with that username already exists."
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	authTokenRepo        repositories.AuthTokenRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	auditService         AuditServiceInterface
	metrics              MetricsRecorderInterface
	maxFailedAttempts    int
	logger               *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	authTokenRepo repositories.AuthTokenRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	auditService AuditServiceInterface,
	metrics MetricsRecorderInterface,
	maxFailedAttempts int,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:             userRepo,
		authTokenRepo:        authTokenRepo,
		refreshTokenRepo:     refreshTokenRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		auditService:         auditService,
		metrics:              metrics,
		maxFailedAttempts:    maxFailedAttempts,
		logger:               logger,
	}
}

// Register creates a user and signs them in. Field problems, including a
// taken email or username, come back as models.ValidationErrors and no row
// is written.
func (s *AuthService) Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.Session, error) {
	user := models.NewUser(req.Username, req.Email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	if req.EmailNotifications != nil {
		user.EmailNotifications = *req.EmailNotifications
	}
	if req.ThemePreference != "" {
		user.ThemePreference = req.ThemePreference
	}
	if req.CurrencyPreference != "" {
		user.CurrencyPreference = req.CurrencyPreference
	}

	errs := models.ValidationErrors{}
	if err := checkIdentityAvailable(s.userRepo, errs, user.Username, user.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.passwordService.ValidatePassword(req.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if len(errs) > 0 {
		s.auditService.Record(nil, models.AuditActionRegister, models.AuditResourceAuth, ipAddress, userAgent,
			map[string]interface{}{"email": user.Email, "reason": "validation_failed"})
		return nil, errs
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashedPassword

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, models.ValidationErrors{"email": msgEmailTaken}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.auditService.Record(&user.ID, models.AuditActionRegister, models.AuditResourceAuth, ipAddress, userAgent, nil)
	s.recordAuthEvent("register")

	return session, nil
}

// Login matches the identifier against the email column when it contains
// an @ and the username otherwise. Unknown users and wrong passwords both
// produce ErrInvalidCredentials.
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.Session, error) {
	identifier := req.LoginIdentifier()
	if identifier == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if models.IsEmailIdentifier(identifier) {
		user, err = s.userRepo.GetByEmail(identifier)
	} else {
		user, err = s.userRepo.GetByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditFailedLogin(nil, identifier, ipAddress, userAgent, "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(&user.ID, identifier, ipAddress, userAgent, "account_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		locked := user.IncrementFailedAttempts(s.maxFailedAttempts)
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts,
			"locked_at":             user.LockedAt,
		}); err != nil {
			s.logger.Error("failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if locked {
			s.auditService.Record(&user.ID, models.AuditActionAccountLocked, models.AuditResourceAuth, ipAddress, userAgent, nil)
		}
		s.auditFailedLogin(&user.ID, identifier, ipAddress, userAgent, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	user.ResetFailedAttempts()
	user.UpdateLastLogin()
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"failed_login_attempts": 0,
		"last_login_at":         user.LastLoginAt,
	}); err != nil {
		s.logger.Warn("failed to record login",
			"error", err,
			"user_id", user.ID)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.auditService.Record(&user.ID, models.AuditActionLogin, models.AuditResourceAuth, ipAddress, userAgent, nil)
	s.recordAuthEvent("login")

	return session, nil
}

// RefreshTokens rotates a refresh token: the presented token is revoked and
// a fresh pair is issued.
func (s *AuthService) RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.JWTPair, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	if !storedToken.IsValid() || storedToken.UserID != userID {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.refreshTokenRepo.Revoke(storedToken.ID); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			// Lost a race with another refresh of the same token.
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	pair, err := s.generateJWTPair(user)
	if err != nil {
		return nil, err
	}

	s.auditService.Record(&user.ID, models.AuditActionTokenRefresh, models.AuditResourceAuth, ipAddress, userAgent, nil)

	return pair, nil
}

// Logout revokes every credential the user holds. accessToken is empty when
// the request was authenticated with an opaque key.
func (s *AuthService) Logout(userID uuid.UUID, accessToken, ipAddress, userAgent string) error {
	if accessToken != "" {
		jti, err := s.tokenService.GetJTI(accessToken)
		if err == nil && jti != "" {
			expiry, expErr := s.tokenService.GetTokenExpiry(accessToken)
			if expErr != nil {
				expiry = time.Now().Add(24 * time.Hour)
			}
			if err := s.blacklistedTokenRepo.Create(&models.BlacklistedToken{
				JTI:       jti,
				UserID:    userID,
				ExpiresAt: expiry,
			}); err != nil {
				return fmt.Errorf("failed to blacklist token: %w", err)
			}
		}
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	if err := s.authTokenRepo.DeleteByUserID(userID); err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}

	s.auditService.Record(&userID, models.AuditActionLogout, models.AuditResourceAuth, ipAddress, userAgent, nil)
	s.recordAuthEvent("logout")

	return nil
}

// AuthenticateAccessToken resolves a signed access token to its user. A
// blacklisted token or a deleted user is rejected.
func (s *AuthService) AuthenticateAccessToken(accessToken string) (*models.User, error) {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklistedTokenRepo.IsBlacklisted(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.loadActiveUser(userID)
}

// AuthenticateKey resolves an opaque token key to its user
func (s *AuthService) AuthenticateKey(key string) (*models.User, error) {
	token, err := s.authTokenRepo.GetByKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrAuthTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load auth token: %w", err)
	}

	return s.loadActiveUser(token.UserID)
}

func (s *AuthService) loadActiveUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	return user, nil
}

// checkIdentityAvailable adds field errors for a username or email already
// used by a user other than excludeID
func checkIdentityAvailable(userRepo repositories.UserRepositoryInterface, errs models.ValidationErrors, username, email string, excludeID uuid.UUID) error {
	if username != "" {
		taken, err := userRepo.UsernameExists(username, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}

	if email != "" {
		taken, err := userRepo.EmailExists(email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}

	return nil
}

func (s *AuthService) issueSession(user *models.User) (*dto.Session, error) {
	authToken, err := s.authTokenRepo.GetOrCreate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue auth token: %w", err)
	}

	pair, err := s.generateJWTPair(user)
	if err != nil {
		return nil, err
	}

	return &dto.Session{
		User:  user,
		Token: authToken.Key,
		JWT:   *pair,
	}, nil
}

func (s *AuthService) generateJWTPair(user *models.User) (*dto.JWTPair, error) {
	accessToken, _, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.JWTPair{Access: accessToken, Refresh: refreshToken}, nil
}

func (s *AuthService) auditFailedLogin(userID *uuid.UUID, identifier, ipAddress, userAgent, reason string) {
	s.auditService.Record(userID, models.AuditActionFailedLogin, models.AuditResourceAuth, ipAddress, userAgent,
		map[string]interface{}{
			"identifier": identifier,
			"reason":     reason,
		})
	s.recordAuthEvent("failed_login")
}

func (s *AuthService) recordAuthEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": eventType})
}

func hashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
