package dto

import (
	"time"

	"finance-tracker/internal/models"
)

// CategoryRequest creates or fully replaces a category
type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Type  string `json:"type" validate:"omitempty,entry_type"`
	Icon  string `json:"icon" validate:"max=50"`
	Color string `json:"color" validate:"omitempty,hex_color"`
}

// CategoryPatch changes only the fields present
type CategoryPatch struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Type  *string `json:"type" validate:"omitempty,entry_type"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,hex_color"`
}

// CategoryListQuery filters the category listing
type CategoryListQuery struct {
	Type string `query:"type" validate:"omitempty,entry_type"`
}

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      c.Type,
		Icon:      c.Icon,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

func NewCategoryResponses(categories []*models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}
