package main

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"
	"finance-tracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoData(t *testing.T) {
	db := database.SetupTestDB(t)
	user := database.CreateTestUser(t, db, "demo@example.com")
	groceries := database.CreateTestCategory(t, db, user.ID, "Groceries", models.CategoryTypeExpense)
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	result, err := seedDemoData(db, services.NewDemoDataGenerator(7), "demo@example.com", 3, now)
	require.NoError(t, err)

	assert.Greater(t, result.Transactions, 0)
	assert.GreaterOrEqual(t, result.Goals, 2)

	var categories []models.Category
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&categories).Error)
	assert.Len(t, categories, result.CategoriesCreated+1)

	var reused int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("category_id = ?", groceries.ID).Count(&reused).Error)
	assert.Greater(t, reused, int64(0), "existing category is reused by name")

	var outside int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("user_id = ? AND date > ?", user.ID, now).Count(&outside).Error)
	assert.Zero(t, outside)

	t.Run("second run creates no categories", func(t *testing.T) {
		again, err := seedDemoData(db, services.NewDemoDataGenerator(8), "demo@example.com", 1, now)
		require.NoError(t, err)
		assert.Zero(t, again.CategoriesCreated)
	})
}

func TestSeedDemoData_UnknownEmail(t *testing.T) {
	db := database.SetupTestDB(t)

	_, err := seedDemoData(db, services.NewDemoDataGenerator(1), "nobody@example.com", 1, time.Now())
	assert.ErrorContains(t, err, "no user with email")
}
