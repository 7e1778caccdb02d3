package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB returns a migrated in-memory sqlite database. The pool is held
// at one connection so every query sees the same in-memory schema.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = testDB.Close()
	})

	return testDB
}

// CreateTestUser inserts a user whose username is derived from the email.
func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	username := strings.SplitN(email, "@", 2)[0]
	user := models.NewUser(username, email)
	user.PasswordHash = "hashed_password"
	user.FirstName = "Test"
	user.LastName = "User"

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func CreateTestCategory(t *testing.T, db *DB, userID uuid.UUID, name, categoryType string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name, Type: categoryType}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

func CreateTestTransaction(t *testing.T, db *DB, userID uuid.UUID, categoryID *uuid.UUID, txType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Date:        models.TruncateToDate(date),
		Description: fmt.Sprintf("%s %s", txType, amount),
		Amount:      decimal.RequireFromString(amount),
		Type:        txType,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return tx
}

func CreateTestGoal(t *testing.T, db *DB, userID uuid.UUID, title, target string, deadline time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Title:         title,
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.Zero,
		Deadline:      models.TruncateToDate(deadline),
		Status:        models.GoalStatusInProgress,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}

	return goal
}

var testTables = []string{
	"notification_jobs",
	"notifications",
	"goals",
	"transactions",
	"categories",
	"audit_logs",
	"blacklisted_tokens",
	"refresh_tokens",
	"auth_tokens",
	"users",
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	for _, table := range testTables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
