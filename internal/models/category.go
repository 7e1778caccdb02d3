package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"

	DefaultCategoryColor = "#000000"

	// UncategorizedLabel names the bucket for transactions with no category.
	UncategorizedLabel = "Uncategorized"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Type      string    `gorm:"type:varchar(10);not null;default:'expense'" json:"type"`
	Icon      string    `gorm:"type:varchar(50)" json:"icon"`
	Color     string    `gorm:"type:varchar(7);not null;default:'#000000'" json:"color"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (*Category) TableName() string {
	return "categories"
}

// Normalize trims input and applies defaults for omitted fields.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.Color = strings.TrimSpace(c.Color)
	if c.Type == "" {
		c.Type = CategoryTypeExpense
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

func (c *Category) Validate() error {
	errs := ValidationErrors{}

	if c.Name == "" {
		errs.Add("name", "This field may not be blank.")
	} else if utf8.RuneCountInString(c.Name) > 50 {
		errs.Add("name", "Ensure this field has no more than 50 characters.")
	}

	if !IsValidEntryType(c.Type) {
		errs.Add("type", "\""+c.Type+"\" is not a valid choice.")
	}

	if utf8.RuneCountInString(c.Icon) > 50 {
		errs.Add("icon", "Ensure this field has no more than 50 characters.")
	}

	if !hexColorRegex.MatchString(c.Color) {
		errs.Add("color", "Enter a valid hex color, e.g. #1a2b3c.")
	}

	return errs.OrNil()
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Normalize()
	return c.Validate()
}

// IsValidEntryType reports whether t is income or expense. Categories and
// transactions share the same type vocabulary.
func IsValidEntryType(t string) bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}
