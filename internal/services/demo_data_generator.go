package services

import (
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type demoCategory struct {
	Name     string
	Type     string
	Icon     string
	Merchant []string
	Min, Max float64
	PerMonth int
}

var demoCategories = []demoCategory{
	{Name: "Salary", Type: models.CategoryTypeIncome, Icon: "briefcase", Min: 2500, Max: 6000, PerMonth: 1},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Icon: "laptop", Min: 150, Max: 1200, PerMonth: 1},
	{Name: "Groceries", Type: models.CategoryTypeExpense, Icon: "cart", Merchant: []string{"Kroger", "Whole Foods Market", "Trader Joe's", "Aldi", "Costco Wholesale"}, Min: 15, Max: 250, PerMonth: 6},
	{Name: "Dining", Type: models.CategoryTypeExpense, Icon: "utensils", Merchant: []string{"Starbucks", "Chipotle Mexican Grill", "Panera Bread", "Olive Garden", "Five Guys"}, Min: 8, Max: 120, PerMonth: 5},
	{Name: "Transportation", Type: models.CategoryTypeExpense, Icon: "car", Merchant: []string{"Uber", "Lyft", "Shell", "Chevron", "Metro Transit"}, Min: 10, Max: 80, PerMonth: 4},
	{Name: "Utilities", Type: models.CategoryTypeExpense, Icon: "bolt", Merchant: []string{"PG&E", "Comcast Xfinity", "Verizon Wireless", "Water Department"}, Min: 50, Max: 250, PerMonth: 2},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Icon: "film", Merchant: []string{"Netflix", "Spotify", "AMC Theaters", "Disney+"}, Min: 10, Max: 60, PerMonth: 2},
	{Name: "Healthcare", Type: models.CategoryTypeExpense, Icon: "heart", Merchant: []string{"CVS Pharmacy", "Walgreens", "Kaiser Permanente"}, Min: 20, Max: 300, PerMonth: 1},
}

var demoGoalTitles = []string{"Emergency fund", "Summer vacation", "New laptop", "Car down payment", "Wedding gift", "Home office"}

type demoDataGenerator struct {
	faker *gofakeit.Faker
}

// NewDemoDataGenerator creates a generator. A zero seed uses the clock, so
// tests pass a fixed seed for repeatable output.
func NewDemoDataGenerator(seed uint64) DemoDataGeneratorInterface {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &demoDataGenerator{faker: gofakeit.New(seed)}
}

// Categories returns the demo income and expense categories for userID
func (g *demoDataGenerator) Categories(userID uuid.UUID) []*models.Category {
	categories := make([]*models.Category, 0, len(demoCategories))
	for _, c := range demoCategories {
		categories = append(categories, &models.Category{
			ID:     uuid.New(),
			UserID: userID,
			Name:   c.Name,
			Type:   c.Type,
			Icon:   c.Icon,
			Color:  g.faker.HexColor(),
		})
	}
	return categories
}

// Transactions generates a month-by-month history between start and end.
// Salary lands on the first of each month; everything else on a random day.
func (g *demoDataGenerator) Transactions(userID uuid.UUID, categories []*models.Category, start, end time.Time) []*models.Transaction {
	start = models.TruncateToDate(start)
	end = models.TruncateToDate(end)
	if !end.After(start) {
		return nil
	}

	byName := make(map[string]*models.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}

	var transactions []*models.Transaction
	for month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); month.Before(end); month = month.AddDate(0, 1, 0) {
		from := month
		if from.Before(start) {
			from = start
		}
		to := month.AddDate(0, 1, 0)
		if to.After(end) {
			to = end
		}

		for _, spec := range demoCategories {
			category, ok := byName[spec.Name]
			if !ok {
				continue
			}

			count := spec.PerMonth
			if count > 1 {
				count = g.faker.IntRange(count/2, count)
			}
			for i := 0; i < count; i++ {
				date := g.day(from, to)
				if spec.Name == "Salary" {
					if month.Before(start) {
						break
					}
					date = month
				}

				categoryID := category.ID
				transactions = append(transactions, &models.Transaction{
					ID:          uuid.New(),
					UserID:      userID,
					CategoryID:  &categoryID,
					Date:        date,
					Description: g.description(spec),
					Amount:      g.amount(spec.Min, spec.Max),
					Type:        spec.Type,
				})
			}
		}
	}

	return transactions
}

// Goals returns a mix of open and finished savings goals
func (g *demoDataGenerator) Goals(userID uuid.UUID, now time.Time) []*models.Goal {
	today := models.TruncateToDate(now)
	count := g.faker.IntRange(2, 4)

	goals := make([]*models.Goal, 0, count)
	for i := 0; i < count; i++ {
		target := decimal.NewFromInt(int64(g.faker.IntRange(5, 50)) * 100)
		progress := decimal.NewFromFloat(g.faker.Float64Range(0, 1))
		if i == 0 {
			progress = decimal.NewFromInt(1)
		}

		goal := &models.Goal{
			ID:            uuid.New(),
			UserID:        userID,
			Title:         demoGoalTitles[(i+g.faker.IntRange(0, len(demoGoalTitles)-1))%len(demoGoalTitles)],
			Description:   g.faker.Sentence(6),
			TargetAmount:  target,
			CurrentAmount: target.Mul(progress).Round(2),
			Deadline:      today.AddDate(0, g.faker.IntRange(1, 12), 0),
			Status:        models.GoalStatusInProgress,
			Version:       1,
		}
		goal.ReevaluateStatus()
		goals = append(goals, goal)
	}

	return goals
}

func (g *demoDataGenerator) day(from, to time.Time) time.Time {
	days := int(to.Sub(from).Hours() / 24)
	if days <= 1 {
		return from
	}
	return from.AddDate(0, 0, g.faker.IntRange(0, days-1))
}

func (g *demoDataGenerator) amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
}

func (g *demoDataGenerator) description(spec demoCategory) string {
	if len(spec.Merchant) == 0 {
		if spec.Name == "Salary" {
			return fmt.Sprintf("Salary - %s", g.faker.Company())
		}
		return fmt.Sprintf("%s invoice #%d", g.faker.Company(), g.faker.IntRange(1000, 9999))
	}
	return g.faker.RandomString(spec.Merchant)
}
