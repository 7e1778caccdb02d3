package repositories

import (
	"crypto/sha256"
	"fmt"
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestTokenRepositories(t *testing.T) {
	suite.Run(t, new(TokenRepositorySuite))
}

type TokenRepositorySuite struct {
	suite.Suite
	db          *database.DB
	user        *models.User
	authTokens  AuthTokenRepositoryInterface
	refresh     RefreshTokenRepositoryInterface
	blacklisted BlacklistedTokenRepositoryInterface
}

func (s *TokenRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.user = database.CreateTestUser(s.T(), s.db, "tokens@example.com")
	s.authTokens = NewAuthTokenRepository(s.db.DB)
	s.refresh = NewRefreshTokenRepository(s.db.DB)
	s.blacklisted = NewBlacklistedTokenRepository(s.db.DB)
}

func (s *TokenRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TokenRepositorySuite) hashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (s *TokenRepositorySuite) TestAuthToken_GetOrCreate() {
	first, err := s.authTokens.GetOrCreate(s.user.ID)
	s.Require().NoError(err)
	s.Len(first.Key, 40)

	second, err := s.authTokens.GetOrCreate(s.user.ID)
	s.NoError(err)
	s.Equal(first.Key, second.Key, "a user keeps a single opaque token")

	found, err := s.authTokens.GetByKey(first.Key)
	s.NoError(err)
	s.Equal(s.user.ID, found.UserID)

	s.NoError(s.authTokens.DeleteByUserID(s.user.ID))
	_, err = s.authTokens.GetByKey(first.Key)
	s.Equal(ErrAuthTokenNotFound, err)
}

func (s *TokenRepositorySuite) TestRefreshToken_Lifecycle() {
	token := &models.RefreshToken{
		UserID:    s.user.ID,
		TokenHash: s.hashToken("test.refresh.token"),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	s.Require().NoError(s.refresh.Create(token))
	s.NotEqual(uuid.Nil, token.ID)

	found, err := s.refresh.GetByTokenHash(token.TokenHash)
	s.NoError(err)
	s.True(found.IsValid())

	s.NoError(s.refresh.Revoke(token.ID))
	found, err = s.refresh.GetByTokenHash(token.TokenHash)
	s.NoError(err)
	s.False(found.IsValid())

	s.Equal(ErrRefreshTokenNotFound, s.refresh.Revoke(token.ID), "already revoked")

	_, err = s.refresh.GetByTokenHash(s.hashToken("missing"))
	s.Equal(ErrRefreshTokenNotFound, err)
}

func (s *TokenRepositorySuite) TestRefreshToken_RevokeAllAndExpire() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.refresh.Create(&models.RefreshToken{
			UserID:    s.user.ID,
			TokenHash: s.hashToken(fmt.Sprintf("token-%d", i)),
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}
	s.Require().NoError(s.refresh.Create(&models.RefreshToken{
		UserID:    s.user.ID,
		TokenHash: s.hashToken("expired"),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	s.NoError(s.refresh.RevokeAllForUser(s.user.ID))

	var active int64
	s.NoError(s.db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&active).Error)
	s.Zero(active)

	deleted, err := s.refresh.DeleteExpired()
	s.NoError(err)
	s.Equal(int64(1), deleted)
}

func (s *TokenRepositorySuite) TestBlacklistedToken() {
	jti := uuid.NewString()

	blacklisted, err := s.blacklisted.IsBlacklisted(jti)
	s.NoError(err)
	s.False(blacklisted)

	token := &models.BlacklistedToken{JTI: jti, UserID: s.user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	s.NoError(s.blacklisted.Create(token))
	s.NoError(s.blacklisted.Create(&models.BlacklistedToken{JTI: jti, UserID: s.user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	blacklisted, err = s.blacklisted.IsBlacklisted(jti)
	s.NoError(err)
	s.True(blacklisted)

	s.NoError(s.blacklisted.Create(&models.BlacklistedToken{JTI: "old", UserID: s.user.ID, ExpiresAt: time.Now().Add(-time.Minute)}))
	deleted, err := s.blacklisted.DeleteExpired()
	s.NoError(err)
	s.Equal(int64(1), deleted)
}
