package services

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const dashboardWindowDays = 30

type dashboardService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	goalRepo        repositories.GoalRepositoryInterface
	now             func() time.Time
}

// NewDashboardService creates a new DashboardServiceInterface instance
func NewDashboardService(
	transactionRepo repositories.TransactionRepositoryInterface,
	goalRepo repositories.GoalRepositoryInterface,
) DashboardServiceInterface {
	return &dashboardService{
		transactionRepo: transactionRepo,
		goalRepo:        goalRepo,
		now:             time.Now,
	}
}

// Stats summarises the last 30 days, today included, and counts goals that
// are still in progress. The two queries run concurrently.
func (s *dashboardService) Stats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	today := models.TruncateToDate(s.now())
	from := today.AddDate(0, 0, -dashboardWindowDays)
	to := today.AddDate(0, 0, 1)

	var (
		totals      models.TypeTotals
		activeGoals int64
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		totals, err = s.transactionRepo.SumByType(userID, &from, &to)
		if err != nil {
			return fmt.Errorf("failed to sum recent transactions: %w", err)
		}
		return ctx.Err()
	})

	g.Go(func() error {
		var err error
		activeGoals, err = s.goalRepo.CountByStatus(userID, models.GoalStatusInProgress)
		if err != nil {
			return fmt.Errorf("failed to count active goals: %w", err)
		}
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		Summary: models.DashboardSummary{
			Income:      totals.Income,
			Expenses:    totals.Expense,
			Balance:     totals.Net(),
			ActiveGoals: activeGoals,
		},
	}, nil
}
