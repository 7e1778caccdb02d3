package services

import (
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DemoDataGeneratorTestSuite struct {
	suite.Suite
	generator DemoDataGeneratorInterface
	userID    uuid.UUID
}

func TestDemoDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DemoDataGeneratorTestSuite))
}

func (s *DemoDataGeneratorTestSuite) SetupTest() {
	s.generator = NewDemoDataGenerator(42)
	s.userID = uuid.New()
}

func (s *DemoDataGeneratorTestSuite) TestCategories_AreValid() {
	categories := s.generator.Categories(s.userID)
	s.Len(categories, len(demoCategories))

	types := map[string]int{}
	for _, c := range categories {
		s.Equal(s.userID, c.UserID)
		s.NoError(c.Validate(), c.Name)
		types[c.Type]++
	}
	s.Positive(types[models.CategoryTypeIncome])
	s.Positive(types[models.CategoryTypeExpense])
}

func (s *DemoDataGeneratorTestSuite) TestTransactions_StayInRangeAndValidate() {
	categories := s.generator.Categories(s.userID)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	transactions := s.generator.Transactions(s.userID, categories, start, end)
	s.NotEmpty(transactions)

	salaries := 0
	for _, tx := range transactions {
		s.False(tx.Date.Before(start), "date %s before start", tx.Date)
		s.True(tx.Date.Before(end), "date %s not before end", tx.Date)
		s.NoError(tx.Validate())
		s.Require().NotNil(tx.CategoryID)
		if tx.Description != "" && tx.Date.Day() == 1 && tx.Type == models.TransactionTypeIncome && tx.Amount.GreaterThanOrEqual(decimal.RequireFromString("2500")) {
			salaries++
		}
	}
	s.GreaterOrEqual(salaries, 3, "one salary per month")
}

func (s *DemoDataGeneratorTestSuite) TestTransactions_EmptyRange() {
	now := time.Now()
	s.Empty(s.generator.Transactions(s.userID, s.generator.Categories(s.userID), now, now))
}

func (s *DemoDataGeneratorTestSuite) TestGoals_RespectInvariants() {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	goals := s.generator.Goals(s.userID, now)

	s.GreaterOrEqual(len(goals), 2)
	s.True(goals[0].IsCompleted())
	for _, g := range goals {
		s.NoError(g.Validate(now), g.Title)
		s.True(g.CurrentAmount.LessThanOrEqual(g.TargetAmount))
		s.Equal(g.CurrentAmount.Equal(g.TargetAmount), g.IsCompleted())
	}
}
