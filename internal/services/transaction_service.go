package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

const (
	trendWindowDays  = 180
	monthNameLayout  = "January"
	msgInvalidDate   = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidNumber = "A valid number is required."
)

type transactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	pagination      config.PaginationConfig
	now             func() time.Time
}

// NewTransactionService creates a new TransactionServiceInterface instance
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	pagination config.PaginationConfig,
) TransactionServiceInterface {
	return newTransactionService(transactionRepo, categoryRepo, pagination, time.Now)
}

func newTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	pagination config.PaginationConfig,
	now func() time.Time,
) *transactionService {
	if pagination.DefaultPageSize <= 0 {
		pagination.DefaultPageSize = 10
	}
	if pagination.MaxPageSize <= 0 {
		pagination.MaxPageSize = 100
	}
	return &transactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		pagination:      pagination,
		now:             now,
	}
}

// List returns one page of the user's transactions. Unparseable filters are
// reported as field errors.
func (s *transactionService) List(userID uuid.UUID, query dto.TransactionListQuery) (*dto.Page[dto.TransactionResponse], error) {
	errs := models.ValidationErrors{}
	filter := models.TransactionFilter{
		Type:     query.Type,
		Search:   query.Search,
		Ordering: query.Ordering,
	}

	if filter.Type != "" && !models.IsValidEntryType(filter.Type) {
		errs.Add("type", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", filter.Type))
	}
	if filter.Ordering != "" && !models.IsValidOrdering(filter.Ordering) {
		errs.Add("ordering", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", filter.Ordering))
	}
	if query.Category != "" {
		categoryID, err := uuid.Parse(query.Category)
		if err != nil {
			errs.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			filter.CategoryID = &categoryID
		}
	}
	filter.Date = parseDateFilter(errs, "date", query.Date)
	filter.StartDate = parseDateFilter(errs, "start_date", query.StartDate)
	filter.EndDate = parseDateFilter(errs, "end_date", query.EndDate)

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	page := dto.PageQuery{Page: query.Page, PageSize: query.PageSize}.
		Normalize(s.pagination.DefaultPageSize, s.pagination.MaxPageSize)
	filter.Offset = page.Offset()
	filter.Limit = page.PageSize

	transactions, total, err := s.transactionRepo.List(userID, filter)
	if err != nil {
		return nil, err
	}

	result := dto.NewPage(dto.NewTransactionResponses(transactions), total, page)
	return &result, nil
}

func (s *transactionService) Get(userID, id uuid.UUID) (*models.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

func (s *transactionService) Create(userID uuid.UUID, req dto.TransactionRequest) (*models.Transaction, error) {
	transaction := &models.Transaction{UserID: userID}
	if err := s.applyRequest(transaction, req); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *transactionService) Replace(userID, id uuid.UUID, req dto.TransactionRequest) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyRequest(transaction, req); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *transactionService) Patch(userID, id uuid.UUID, patch dto.TransactionPatch) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	errs := models.ValidationErrors{}
	if patch.Date != nil {
		if date, err := models.ParseDate(*patch.Date); err != nil {
			errs.Add("date", msgInvalidDate)
		} else {
			transaction.Date = date
		}
	}
	if patch.Description != nil {
		transaction.Description = *patch.Description
	}
	if patch.Amount != nil {
		if amount, err := patch.Amount.Decimal(); err != nil {
			errs.Add("amount", msgInvalidNumber)
		} else {
			transaction.Amount = amount
		}
	}
	if patch.Type != nil {
		transaction.Type = *patch.Type
	}
	if patch.Category.Set {
		if err := s.applyCategory(errs, transaction, patch.Category.Value); err != nil {
			return nil, err
		}
	}

	if err := finishTransactionValidation(errs, transaction); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *transactionService) Delete(userID, id uuid.UUID) error {
	return s.transactionRepo.Delete(userID, id)
}

// Summary totals all time, the current calendar month and the previous one.
// Month boundaries are taken in UTC.
func (s *transactionService) Summary(userID uuid.UUID) (*models.TransactionSummary, error) {
	now := s.now().UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextStart := currentStart.AddDate(0, 1, 0)
	previousStart := currentStart.AddDate(0, -1, 0)

	allTime, err := s.transactionRepo.SumByType(userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	current, err := s.transactionRepo.SumByType(userID, &currentStart, &nextStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	previous, err := s.transactionRepo.SumByType(userID, &previousStart, &currentStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &models.TransactionSummary{
		TotalIncome:     allTime.Income,
		TotalExpenses:   allTime.Expense,
		Balance:         allTime.Net(),
		MonthlyIncome:   current.Income,
		MonthlyExpenses: current.Expense,
		MonthlyChange:   models.MonthlyChange(current.Net(), previous.Net()),
		CurrentMonth: models.MonthTotals{
			Name:     currentStart.Format(monthNameLayout),
			Income:   current.Income,
			Expenses: current.Expense,
		},
		PreviousMonth: models.PreviousMonth{
			Name:  previousStart.Format(monthNameLayout),
			Total: previous.Net(),
		},
	}, nil
}

// Trends returns per-month income and expense over the trailing window,
// oldest month first
func (s *transactionService) Trends(userID uuid.UUID) ([]models.TrendPoint, error) {
	since := models.TruncateToDate(s.now()).AddDate(0, 0, -trendWindowDays)

	points, err := s.transactionRepo.MonthlyTotals(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get trends: %w", err)
	}
	if points == nil {
		points = []models.TrendPoint{}
	}
	return points, nil
}

func (s *transactionService) ByCategory(userID uuid.UUID) ([]models.CategoryTotal, error) {
	totals, err := s.transactionRepo.ExpensesByCategory(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses by category: %w", err)
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	return totals, nil
}

// applyRequest overwrites every editable field from a full request
func (s *transactionService) applyRequest(transaction *models.Transaction, req dto.TransactionRequest) error {
	errs := models.ValidationErrors{}

	if date, err := models.ParseDate(req.Date); err != nil {
		errs.Add("date", msgInvalidDate)
	} else {
		transaction.Date = date
	}

	if amount, err := req.Amount.Decimal(); err != nil {
		errs.Add("amount", msgInvalidNumber)
	} else {
		transaction.Amount = amount
	}

	transaction.Description = req.Description
	transaction.Type = req.Type
	if err := s.applyCategory(errs, transaction, req.Category); err != nil {
		return err
	}

	return finishTransactionValidation(errs, transaction)
}

// applyCategory sets or clears the category. Only categories owned by the
// transaction's user are accepted.
func (s *transactionService) applyCategory(errs models.ValidationErrors, transaction *models.Transaction, raw *string) error {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		transaction.CategoryID = nil
		transaction.Category = nil
		return nil
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		errs.Add("category", fmt.Sprintf("“%s” is not a valid UUID.", *raw))
		return nil
	}

	category, err := s.categoryRepo.GetByID(transaction.UserID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			errs.Add("category", fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", categoryID))
			return nil
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	transaction.CategoryID = &category.ID
	transaction.Category = category
	return nil
}

// finishTransactionValidation merges model-level errors into errs, keeping
// the parse errors already recorded
func finishTransactionValidation(errs models.ValidationErrors, transaction *models.Transaction) error {
	if err := transaction.Validate(); err != nil {
		var modelErrs models.ValidationErrors
		if errors.As(err, &modelErrs) {
			for field, message := range modelErrs {
				errs.Add(field, message)
			}
		} else {
			return err
		}
	}
	return errs.OrNil()
}

func parseDateFilter(errs models.ValidationErrors, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		errs.Add(field, "Enter a valid date.")
		return nil
	}
	return &date
}
