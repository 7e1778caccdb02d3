package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Omit("Category", "User").Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an owned transaction with its category loaded
func (r *transactionRepository) GetByID(userID, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// List returns one page of the user's transactions matching filter and the
// total number of matches
func (r *transactionRepository) List(userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, int64, error) {
	var transactions []*models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Date != nil {
		day := models.TruncateToDate(*filter.Date)
		query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", models.TruncateToDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date < ?", models.TruncateToDate(*filter.EndDate).AddDate(0, 0, 1))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Preload("Category").
		Order(filter.OrderClause()).
		Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// Update writes the editable columns of an owned transaction
func (r *transactionRepository) Update(transaction *models.Transaction) error {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transaction.ID, transaction.UserID).
		Updates(map[string]interface{}{
			"category_id": transaction.CategoryID,
			"date":        transaction.Date,
			"description": transaction.Description,
			"amount":      transaction.Amount,
			"type":        transaction.Type,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *transactionRepository) Delete(userID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

type typeSumRow struct {
	Type  string
	Total decimal.Decimal
}

// SumByType totals income and expense in [from, to). Nil bounds are open.
func (r *transactionRepository) SumByType(userID uuid.UUID, from, to *time.Time) (models.TypeTotals, error) {
	var rows []typeSumRow

	query := r.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date < ?", *to)
	}

	if err := query.Group("type").Scan(&rows).Error; err != nil {
		return models.TypeTotals{}, fmt.Errorf("failed to sum transactions: %w", err)
	}

	totals := models.TypeTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case models.CategoryTypeIncome:
			totals.Income = models.RoundMoney(row.Total)
		case models.CategoryTypeExpense:
			totals.Expense = models.RoundMoney(row.Total)
		}
	}

	return totals, nil
}

// ExpensesByCategory sums expenses per category name. Transactions without
// a category are reported under models.UncategorizedLabel.
func (r *transactionRepository) ExpensesByCategory(userID uuid.UUID) ([]models.CategoryTotal, error) {
	var rows []models.CategoryTotal

	nameExpr := fmt.Sprintf("COALESCE(categories.name, '%s')", models.UncategorizedLabel)
	err := r.db.Model(&models.Transaction{}).
		Select(nameExpr+" AS name, COALESCE(SUM(transactions.amount), 0) AS amount").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ?", userID, models.CategoryTypeExpense).
		Group(nameExpr).
		Order("amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}

	for i := range rows {
		rows[i].Amount = models.RoundMoney(rows[i].Amount)
	}

	return rows, nil
}

type monthSumRow struct {
	Month string
	Type  string
	Total decimal.Decimal
}

// MonthlyTotals buckets transactions dated on or after since by calendar
// month. Months without transactions are omitted; the result is ascending.
func (r *transactionRepository) MonthlyTotals(userID uuid.UUID, since time.Time) ([]models.TrendPoint, error) {
	var rows []monthSumRow

	bucket := database.MonthBucket(r.db, "date")
	err := r.db.Model(&models.Transaction{}).
		Select(bucket+" AS month, type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ?", userID, models.TruncateToDate(since)).
		Group(bucket + ", type").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to bucket transactions by month: %w", err)
	}

	points := make([]models.TrendPoint, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		i, ok := index[row.Month]
		if !ok {
			points = append(points, models.TrendPoint{
				Month:   row.Month,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			})
			i = len(points) - 1
			index[row.Month] = i
		}

		switch row.Type {
		case models.CategoryTypeIncome:
			points[i].Income = models.RoundMoney(row.Total)
		case models.CategoryTypeExpense:
			points[i].Expense = models.RoundMoney(row.Total)
		}
	}

	return points, nil
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
