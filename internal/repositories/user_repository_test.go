package repositories

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) newUser(username, email string) *models.User {
	user := models.NewUser(username, email)
	user.PasswordHash = "hashed_password"
	return user
}

func (s *UserRepositorySuite) TestUserRepository_Create() {
	user := s.newUser("alice", "Alice@Example.com")

	err := s.repo.Create(user)
	s.NoError(err)
	s.NotEqual(uuid.Nil, user.ID)
	s.Equal("alice@example.com", user.Email)
	s.True(user.EmailNotifications)
	s.Equal(models.ThemeSystem, user.ThemePreference)
	s.NotZero(user.CreatedAt)

	s.Run("duplicate username", func() {
		err := s.repo.Create(s.newUser("alice", "other@example.com"))
		s.ErrorIs(err, ErrUserAlreadyExists)
	})

	s.Run("nil user", func() {
		s.Error(s.repo.Create(nil))
	})
}

func (s *UserRepositorySuite) TestUserRepository_Lookups() {
	user := s.newUser("bob", "bob@example.com")
	s.Require().NoError(s.repo.Create(user))

	found, err := s.repo.GetByEmail("  BOB@example.com ")
	s.NoError(err)
	s.Equal(user.ID, found.ID)

	found, err = s.repo.GetByUsername("bob")
	s.NoError(err)
	s.Equal(user.ID, found.ID)

	found, err = s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("bob", found.Username)

	_, err = s.repo.GetByEmail("nobody@example.com")
	s.Equal(ErrUserNotFound, err)

	_, err = s.repo.GetByUsername("nobody")
	s.Equal(ErrUserNotFound, err)

	_, err = s.repo.GetByID(uuid.New())
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestUserRepository_Exists() {
	user := s.newUser("carol", "carol@example.com")
	s.Require().NoError(s.repo.Create(user))

	exists, err := s.repo.EmailExists("CAROL@example.com", uuid.Nil)
	s.NoError(err)
	s.True(exists)

	exists, err = s.repo.EmailExists("carol@example.com", user.ID)
	s.NoError(err)
	s.False(exists, "the user's own email is not a conflict")

	exists, err = s.repo.UsernameExists("carol", uuid.Nil)
	s.NoError(err)
	s.True(exists)

	exists, err = s.repo.UsernameExists("dave", uuid.Nil)
	s.NoError(err)
	s.False(exists)
}

func (s *UserRepositorySuite) TestUserRepository_Update() {
	user := s.newUser("erin", "erin@example.com")
	s.Require().NoError(s.repo.Create(user))

	user.FirstName = "Erin"
	user.ThemePreference = models.ThemeDark
	s.NoError(s.repo.Update(user))

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("Erin", found.FirstName)
	s.Equal(models.ThemeDark, found.ThemePreference)

	s.Run("invalid theme is rejected", func() {
		user.ThemePreference = "neon"
		s.Error(s.repo.Update(user))
	})
}

func (s *UserRepositorySuite) TestUserRepository_UpdateFields() {
	user := s.newUser("frank", "frank@example.com")
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.UpdateFields(user.ID, map[string]interface{}{
		"failed_login_attempts": 3,
		"email_notifications":   false,
	})
	s.NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(3, found.FailedLoginAttempts)
	s.False(found.EmailNotifications)

	s.NoError(s.repo.UpdateFields(user.ID, nil))
	s.Equal(ErrUserNotFound, s.repo.UpdateFields(uuid.New(), map[string]interface{}{"first_name": "x"}))
}

func (s *UserRepositorySuite) TestUserRepository_Delete() {
	user := database.CreateTestUser(s.T(), s.db, "gina@example.com")
	other := database.CreateTestUser(s.T(), s.db, "hank@example.com")

	category := database.CreateTestCategory(s.T(), s.db, user.ID, "Food", models.CategoryTypeExpense)
	database.CreateTestTransaction(s.T(), s.db, user.ID, &category.ID, models.CategoryTypeExpense, "12.50", time.Now())
	database.CreateTestGoal(s.T(), s.db, user.ID, "Bike", "500.00", time.Now().AddDate(0, 1, 0))
	database.CreateTestTransaction(s.T(), s.db, other.ID, nil, models.CategoryTypeIncome, "100.00", time.Now())
	s.Require().NoError(s.db.Create(&models.Notification{UserID: user.ID, Title: "t", Message: "m"}).Error)
	s.Require().NoError(s.db.Create(models.NewAuditLog(&user.ID, models.AuditActionLogin, models.AuditResourceAuth, "", "")).Error)

	s.NoError(s.repo.Delete(user.ID))

	_, err := s.repo.GetByID(user.ID)
	s.Equal(ErrUserNotFound, err)

	for _, model := range []interface{}{&models.Transaction{}, &models.Category{}, &models.Goal{}, &models.Notification{}} {
		var count int64
		s.NoError(s.db.Model(model).Where("user_id = ?", user.ID).Count(&count).Error)
		s.Zero(count)
	}

	var remaining int64
	s.NoError(s.db.Model(&models.Transaction{}).Where("user_id = ?", other.ID).Count(&remaining).Error)
	s.Equal(int64(1), remaining, "other users' rows are untouched")

	var audits int64
	s.NoError(s.db.Model(&models.AuditLog{}).Where("user_id IS NULL").Count(&audits).Error)
	s.Equal(int64(1), audits)

	s.Equal(ErrUserNotFound, s.repo.Delete(user.ID))
}
