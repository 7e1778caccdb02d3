package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeIncome  = CategoryTypeIncome
	TransactionTypeExpense = CategoryTypeExpense

	DateLayout = "2006-01-02"

	transactionAmountPrecision = 10
)

type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type        string          `gorm:"type:varchar(10);not null;index" json:"type"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (*Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return t.Validate()
}

func (t *Transaction) Validate() error {
	errs := ValidationErrors{}

	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		errs.Add("description", "This field may not be blank.")
	} else if utf8.RuneCountInString(t.Description) > 255 {
		errs.Add("description", "Ensure this field has no more than 255 characters.")
	}

	checkMoney(errs, "amount", t.Amount, transactionAmountPrecision, false)

	if !IsValidEntryType(t.Type) {
		errs.Add("type", "\""+t.Type+"\" is not a valid choice.")
	}

	if t.Date.IsZero() {
		errs.Add("date", "This field is required.")
	}

	return errs.OrNil()
}

// SignedAmount is positive for income and negative for expenses.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryName returns the joined category's name, or "" when uncategorized
// or not preloaded.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

const (
	OrderDateAsc    = "date"
	OrderDateDesc   = "-date"
	OrderAmountAsc  = "amount"
	OrderAmountDesc = "-amount"
)

// TransactionFilter narrows a transaction listing. The owner is passed
// separately and always applied.
type TransactionFilter struct {
	Type       string
	CategoryID *uuid.UUID
	Date       *time.Time
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Ordering   string
	Offset     int
	Limit      int
}

// OrderClause maps an ordering keyword to SQL. Unknown keywords fall back
// to newest first.
func (f TransactionFilter) OrderClause() string {
	switch f.Ordering {
	case OrderDateAsc:
		return "date ASC, created_at ASC"
	case OrderAmountAsc:
		return "amount ASC, date DESC"
	case OrderAmountDesc:
		return "amount DESC, date DESC"
	default:
		return "date DESC, created_at DESC"
	}
}

func IsValidOrdering(o string) bool {
	switch o {
	case OrderDateAsc, OrderDateDesc, OrderAmountAsc, OrderAmountDesc:
		return true
	}
	return false
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// TruncateToDate drops the clock part, keeping the calendar day in UTC.
func TruncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
