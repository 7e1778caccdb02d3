package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// Authorization header schemes
	SchemeBearer = "Bearer"
	SchemeToken  = "Token"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token is expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// TokenService signs and verifies the RS256 session tokens handed out at
// login. Access tokens carry the username and email for the profile
// endpoints; refresh tokens carry only the user id.
type TokenService struct {
	cfg    config.JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenService(jwtConfig *config.JWTConfig) TokenServiceInterface {
	return &TokenService{
		cfg: *jwtConfig,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(jwtConfig.Issuer),
			jwt.WithIssuedAt(),
		),
		now: time.Now,
	}
}

func (ts *TokenService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("user cannot be nil")
	}

	return ts.sign(models.Claims{
		UserID:    user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		TokenType: TokenTypeAccess,
	}, ts.cfg.AccessTokenDuration)
}

func (ts *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	if userID == uuid.Nil {
		return "", time.Time{}, errors.New("user ID cannot be nil")
	}

	return ts.sign(models.Claims{
		UserID:    userID.String(),
		TokenType: TokenTypeRefresh,
	}, ts.cfg.RefreshTokenDuration)
}

func (ts *TokenService) ValidateAccessToken(tokenString string) (*models.Claims, error) {
	return ts.verify(tokenString, TokenTypeAccess)
}

func (ts *TokenService) ValidateRefreshToken(tokenString string) (*models.Claims, error) {
	return ts.verify(tokenString, TokenTypeRefresh)
}

// ParseAuthorizationHeader splits an Authorization header into its scheme
// and credential. Bearer carries a signed access token, Token an opaque key.
// The scheme is matched case-insensitively and returned canonical.
func (ts *TokenService) ParseAuthorizationHeader(authHeader string) (string, string, error) {
	scheme, credential, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	credential = strings.TrimSpace(credential)
	if !found || credential == "" {
		return "", "", ErrInvalidAuthHeader
	}

	for _, known := range []string{SchemeBearer, SchemeToken} {
		if strings.EqualFold(scheme, known) {
			return known, credential, nil
		}
	}
	return "", "", ErrInvalidAuthHeader
}

// GetJTI reads the token id without checking the signature. Logout uses it
// to blacklist a token that may already be expired.
func (ts *TokenService) GetJTI(tokenString string) (string, error) {
	claims, err := ts.peek(tokenString)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

// GetTokenExpiry reads exp without checking the signature.
func (ts *TokenService) GetTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ts.peek(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}

// sign fills the registered claims shared by both token kinds.
func (ts *TokenService) sign(claims models.Claims, ttl time.Duration) (string, time.Time, error) {
	issuedAt := ts.now()
	expiresAt := issuedAt.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    ts.cfg.Issuer,
		Subject:   claims.UserID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.cfg.PrivateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) verify(tokenString, wantType string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &models.Claims{}
	token, err := ts.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return ts.cfg.PublicKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !token.Valid:
		return nil, ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func (ts *TokenService) peek(tokenString string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &models.Claims{}
	if _, _, err := ts.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
