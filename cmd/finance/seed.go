package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an existing account with demo data",
		Long: `Generate demo categories, transactions and goals for the user with the
given email. Categories the user already has are reused by name.`,
		RunE: runSeed,
	}

	cmd.Flags().String("email", "", "email of the user to seed (required)")
	cmd.Flags().Int("months", 6, "months of transaction history to generate")
	cmd.Flags().Uint64("seed", 0, "random seed; 0 uses the clock")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	months, _ := cmd.Flags().GetInt("months")
	seed, _ := cmd.Flags().GetUint64("seed")

	if months < 1 {
		return fmt.Errorf("--months must be at least 1")
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	result, err := seedDemoData(db, services.NewDemoDataGenerator(seed), email, months, time.Now())
	if err != nil {
		return err
	}

	slog.Info("demo data created",
		"email", email,
		"categories_created", result.CategoriesCreated,
		"transactions", result.Transactions,
		"goals", result.Goals)
	return nil
}

type seedResult struct {
	CategoriesCreated int
	Transactions      int
	Goals             int
}

// seedDemoData writes demo history for the user in a single transaction
func seedDemoData(db *database.DB, gen services.DemoDataGeneratorInterface, email string, months int, now time.Time) (seedResult, error) {
	var result seedResult

	user, err := repositories.NewUserRepository(db.DB).GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return result, fmt.Errorf("no user with email %q", email)
		}
		return result, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		categoryRepo := repositories.NewCategoryRepository(tx)
		transactionRepo := repositories.NewTransactionRepository(tx)
		goalRepo := repositories.NewGoalRepository(tx)

		existing, err := categoryRepo.List(user.ID, "")
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		byName := make(map[string]*models.Category, len(existing))
		for _, c := range existing {
			byName[c.Name] = c
		}

		categories := make([]*models.Category, 0)
		for _, c := range gen.Categories(user.ID) {
			if found, ok := byName[c.Name]; ok {
				categories = append(categories, found)
				continue
			}
			if err := categoryRepo.Create(c); err != nil {
				return fmt.Errorf("failed to create category %s: %w", c.Name, err)
			}
			categories = append(categories, c)
			result.CategoriesCreated++
		}

		for _, t := range gen.Transactions(user.ID, categories, now.AddDate(0, -months, 0), now) {
			if err := transactionRepo.Create(t); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}
			result.Transactions++
		}

		for _, g := range gen.Goals(user.ID, now) {
			if err := goalRepo.Create(g); err != nil {
				return fmt.Errorf("failed to create goal %s: %w", g.Title, err)
			}
			result.Goals++
		}

		return nil
	})
	if err != nil {
		return seedResult{}, err
	}

	return result, nil
}
