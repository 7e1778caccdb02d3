package repositories

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestCategoryRepository(t *testing.T) {
	suite.Run(t, new(CategoryRepositorySuite))
}

type CategoryRepositorySuite struct {
	suite.Suite
	db    *database.DB
	repo  CategoryRepositoryInterface
	owner *models.User
	other *models.User
}

func (s *CategoryRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewCategoryRepository(s.db.DB)
	s.owner = database.CreateTestUser(s.T(), s.db, "owner@example.com")
	s.other = database.CreateTestUser(s.T(), s.db, "other@example.com")
}

func (s *CategoryRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *CategoryRepositorySuite) TestCreate() {
	category := &models.Category{UserID: s.owner.ID, Name: "  Groceries "}

	s.NoError(s.repo.Create(category))
	s.NotEqual(uuid.Nil, category.ID)
	s.Equal("Groceries", category.Name)
	s.Equal(models.CategoryTypeExpense, category.Type)
	s.Equal(models.DefaultCategoryColor, category.Color)

	s.Run("invalid color", func() {
		err := s.repo.Create(&models.Category{UserID: s.owner.ID, Name: "Bad", Color: "red"})
		s.Error(err)
	})
}

func (s *CategoryRepositorySuite) TestOwnership() {
	category := database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Rent", models.CategoryTypeExpense)

	found, err := s.repo.GetByID(s.owner.ID, category.ID)
	s.NoError(err)
	s.Equal("Rent", found.Name)

	_, err = s.repo.GetByID(s.other.ID, category.ID)
	s.Equal(ErrCategoryNotFound, err)

	s.Equal(ErrCategoryNotFound, s.repo.Delete(s.other.ID, category.ID))

	found.UserID = s.other.ID
	found.Name = "Stolen"
	s.Equal(ErrCategoryNotFound, s.repo.Update(found))
}

func (s *CategoryRepositorySuite) TestList() {
	database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Salary", models.CategoryTypeIncome)
	database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Books", models.CategoryTypeExpense)
	database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Coffee", models.CategoryTypeExpense)
	database.CreateTestCategory(s.T(), s.db, s.other.ID, "Hidden", models.CategoryTypeExpense)

	all, err := s.repo.List(s.owner.ID, "")
	s.NoError(err)
	s.Len(all, 3)
	s.Equal("Books", all[0].Name)

	expenses, err := s.repo.List(s.owner.ID, models.CategoryTypeExpense)
	s.NoError(err)
	s.Len(expenses, 2)
}

func (s *CategoryRepositorySuite) TestUpdate() {
	category := database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Fun", models.CategoryTypeExpense)

	category.Name = "Entertainment"
	category.Color = "#FF8800"
	category.Icon = "film"
	s.NoError(s.repo.Update(category))

	found, err := s.repo.GetByID(s.owner.ID, category.ID)
	s.NoError(err)
	s.Equal("Entertainment", found.Name)
	s.Equal("#FF8800", found.Color)
	s.Equal("film", found.Icon)
}

func (s *CategoryRepositorySuite) TestDeleteKeepsTransactions() {
	category := database.CreateTestCategory(s.T(), s.db, s.owner.ID, "Travel", models.CategoryTypeExpense)
	tx := database.CreateTestTransaction(s.T(), s.db, s.owner.ID, &category.ID, models.CategoryTypeExpense, "80.00", time.Now())

	s.NoError(s.repo.Delete(s.owner.ID, category.ID))

	var stored models.Transaction
	s.NoError(s.db.Where("id = ?", tx.ID).First(&stored).Error)
	s.Nil(stored.CategoryID)

	_, err := s.repo.GetByID(s.owner.ID, category.ID)
	s.Equal(ErrCategoryNotFound, err)
}
