package services

import (
	"fmt"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

type categoryService struct {
	repo repositories.CategoryRepositoryInterface
}

// NewCategoryService creates a new CategoryServiceInterface instance
func NewCategoryService(repo repositories.CategoryRepositoryInterface) CategoryServiceInterface {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(userID uuid.UUID, categoryType string) ([]*models.Category, error) {
	if categoryType != "" && !models.IsValidEntryType(categoryType) {
		return nil, models.ValidationErrors{"type": fmt.Sprintf("%q is not a valid choice.", categoryType)}
	}
	return s.repo.List(userID, categoryType)
}

func (s *categoryService) Get(userID, id uuid.UUID) (*models.Category, error) {
	return s.repo.GetByID(userID, id)
}

func (s *categoryService) Create(userID uuid.UUID, req dto.CategoryRequest) (*models.Category, error) {
	category := &models.Category{UserID: userID}
	applyCategoryRequest(category, req)

	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(category); err != nil {
		return nil, err
	}

	return category, nil
}

// Replace overwrites every editable field; omitted optional fields fall
// back to their defaults
func (s *categoryService) Replace(userID, id uuid.UUID, req dto.CategoryRequest) (*models.Category, error) {
	category, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	applyCategoryRequest(category, req)
	return s.save(category)
}

func (s *categoryService) Patch(userID, id uuid.UUID, patch dto.CategoryPatch) (*models.Category, error) {
	category, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Type != nil {
		category.Type = *patch.Type
	}
	if patch.Icon != nil {
		category.Icon = *patch.Icon
	}
	if patch.Color != nil {
		category.Color = *patch.Color
	}

	return s.save(category)
}

// Delete removes the category; its transactions become uncategorized
func (s *categoryService) Delete(userID, id uuid.UUID) error {
	return s.repo.Delete(userID, id)
}

func (s *categoryService) save(category *models.Category) (*models.Category, error) {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}

	return category, nil
}

func applyCategoryRequest(category *models.Category, req dto.CategoryRequest) {
	category.Name = req.Name
	category.Type = req.Type
	category.Icon = req.Icon
	category.Color = req.Color
}
