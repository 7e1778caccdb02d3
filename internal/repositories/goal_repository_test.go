package repositories

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestGoalRepository(t *testing.T) {
	suite.Run(t, new(GoalRepositorySuite))
}

type GoalRepositorySuite struct {
	suite.Suite
	db    *database.DB
	repo  GoalRepositoryInterface
	owner *models.User
}

func (s *GoalRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewGoalRepository(s.db.DB)
	s.owner = database.CreateTestUser(s.T(), s.db, "saver@example.com")
}

func (s *GoalRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *GoalRepositorySuite) TestCreateAndGet() {
	goal := &models.Goal{
		UserID:       s.owner.ID,
		Title:        "Emergency fund",
		TargetAmount: decimal.RequireFromString("1000.00"),
		Deadline:     time.Now().AddDate(0, 6, 0),
	}
	s.Require().NoError(s.repo.Create(goal))
	s.Equal(models.GoalStatusInProgress, goal.Status)
	s.Equal(1, goal.Version)

	found, err := s.repo.GetByID(s.owner.ID, goal.ID)
	s.NoError(err)
	s.Equal("Emergency fund", found.Title)
	s.True(found.CurrentAmount.IsZero())

	stranger := database.CreateTestUser(s.T(), s.db, "stranger@example.com")
	_, err = s.repo.GetByID(stranger.ID, goal.ID)
	s.Equal(ErrGoalNotFound, err)
}

func (s *GoalRepositorySuite) TestUpdateWithOptimisticLock() {
	goal := database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Laptop", "800.00", time.Now().AddDate(0, 2, 0))

	stale, err := s.repo.GetByID(s.owner.ID, goal.ID)
	s.Require().NoError(err)

	goal.ApplyProgress(decimal.RequireFromString("200.00"))
	s.NoError(s.repo.UpdateWithOptimisticLock(goal))
	s.Equal(2, goal.Version)

	stale.ApplyProgress(decimal.RequireFromString("50.00"))
	s.ErrorIs(s.repo.UpdateWithOptimisticLock(stale), models.ErrOptimisticLockConflict)

	found, err := s.repo.GetByID(s.owner.ID, goal.ID)
	s.NoError(err)
	s.Equal("200.00", found.CurrentAmount.StringFixed(2))
	s.Equal(2, found.Version)
}

func (s *GoalRepositorySuite) TestListAndCount() {
	database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Later", "100.00", time.Now().AddDate(1, 0, 0))
	database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Sooner", "100.00", time.Now().AddDate(0, 1, 0))
	done := database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Done", "100.00", time.Now().AddDate(0, 3, 0))
	done.ApplyProgress(decimal.RequireFromString("100.00"))
	s.Require().NoError(s.repo.UpdateWithOptimisticLock(done))

	goals, err := s.repo.List(s.owner.ID, "")
	s.NoError(err)
	s.Require().Len(goals, 3)
	s.Equal("Sooner", goals[0].Title)

	completed, err := s.repo.List(s.owner.ID, models.GoalStatusCompleted)
	s.NoError(err)
	s.Len(completed, 1)

	count, err := s.repo.CountByStatus(s.owner.ID, models.GoalStatusInProgress)
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *GoalRepositorySuite) TestFindInProgressDueBy() {
	now := time.Now().UTC()
	database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Due soon", "100.00", now.AddDate(0, 0, 3))
	database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Due exactly", "100.00", now.AddDate(0, 0, 7))
	database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Far away", "100.00", now.AddDate(0, 0, 30))
	done := database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Finished", "100.00", now.AddDate(0, 0, 1))
	done.ApplyProgress(decimal.RequireFromString("100.00"))
	s.Require().NoError(s.repo.UpdateWithOptimisticLock(done))

	goals, err := s.repo.FindInProgressDueBy(now.AddDate(0, 0, 7))
	s.NoError(err)
	s.Require().Len(goals, 2)
	s.Equal("Due soon", goals[0].Title)
	s.Equal("Due exactly", goals[1].Title)
}

func (s *GoalRepositorySuite) TestDelete() {
	goal := database.CreateTestGoal(s.T(), s.db, s.owner.ID, "Trip", "300.00", time.Now().AddDate(0, 1, 0))

	s.NoError(s.repo.Delete(s.owner.ID, goal.ID))
	s.Equal(ErrGoalNotFound, s.repo.Delete(s.owner.ID, goal.ID))
}
