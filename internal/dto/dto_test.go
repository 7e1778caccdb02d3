package dto

import (
	"encoding/json"
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DTOSuite struct {
	suite.Suite
}

func TestDTOSuite(t *testing.T) {
	suite.Run(t, new(DTOSuite))
}

func (s *DTOSuite) TestAmount_UnmarshalJSON() {
	testCases := []struct {
		name     string
		body     string
		expected Amount
	}{
		{"number", `{"amount": 12.5}`, "12.5"},
		{"string", `{"amount": " 99.99 "}`, "99.99"},
		{"negative", `{"amount": -3}`, "-3"},
		{"null", `{"amount": null}`, ""},
		{"garbage string", `{"amount": "abc"}`, "abc"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			var req UpdateProgressRequest
			s.Require().NoError(json.Unmarshal([]byte(tc.body), &req))
			s.Equal(tc.expected, req.Amount)
		})
	}

	_, err := Amount("abc").Decimal()
	s.Error(err)

	d, err := Amount("500.00").Decimal()
	s.NoError(err)
	s.True(d.Equal(decimal.NewFromInt(500)))
}

func (s *DTOSuite) TestOptionalString() {
	var absent, null, set TransactionPatch
	s.Require().NoError(json.Unmarshal([]byte(`{}`), &absent))
	s.Require().NoError(json.Unmarshal([]byte(`{"category": null}`), &null))
	s.Require().NoError(json.Unmarshal([]byte(`{"category": "abc"}`), &set))

	s.False(absent.Category.Set)
	s.True(null.Category.Set)
	s.Nil(null.Category.Value)
	s.True(set.Category.Set)
	s.Equal("abc", *set.Category.Value)
}

func (s *DTOSuite) TestLoginIdentifier() {
	s.Equal("jane", LoginRequest{Identifier: " jane ", Username: "other"}.LoginIdentifier())
	s.Equal("jane@example.com", LoginRequest{Email: "jane@example.com"}.LoginIdentifier())
	s.Empty(LoginRequest{}.LoginIdentifier())
}

func (s *DTOSuite) TestNewProfileUpdate_StripsPlaceholders() {
	update := NewProfileUpdate(map[string]string{
		"first_name":          "Jane",
		"last_name":           "",
		"phone_number":        "null",
		"theme_preference":    "undefined",
		"currency_preference": "EUR",
		"email_notifications": "false",
	})

	s.Require().NotNil(update.FirstName)
	s.Equal("Jane", *update.FirstName)
	s.Nil(update.LastName)
	s.Nil(update.PhoneNumber)
	s.Nil(update.ThemePreference)
	s.Equal("EUR", *update.CurrencyPreference)
	s.Require().NotNil(update.EmailNotifications)
	s.False(*update.EmailNotifications)
	s.False(update.RemoveProfilePicture)
}

func (s *DTOSuite) TestNewProfileUpdate_BooleanCoercion() {
	for value, expected := range map[string]bool{"true": true, "True": true, "yes": false, "1": false, "on": false} {
		update := NewProfileUpdate(map[string]string{"email_notifications": value})
		s.Require().NotNil(update.EmailNotifications, value)
		s.Equal(expected, *update.EmailNotifications, value)
	}

	s.True(NewProfileUpdate(map[string]string{"remove_profile_picture": "TRUE"}).RemoveProfilePicture)
	s.True(NewProfileUpdate(map[string]string{}).IsEmpty())
}

func (s *DTOSuite) TestNewPage() {
	q := PageQuery{Page: 0, PageSize: 500}.Normalize(10, 100)
	s.Equal(1, q.Page)
	s.Equal(100, q.PageSize)

	q = PageQuery{}.Normalize(10, 100)
	s.Equal(10, q.PageSize)

	first := NewPage([]int{1, 2}, 5, PageQuery{Page: 1, PageSize: 2})
	s.Equal(int64(5), first.Count)
	s.Require().NotNil(first.Next)
	s.Equal(2, *first.Next)
	s.Nil(first.Previous)

	last := NewPage([]int{5}, 5, PageQuery{Page: 3, PageSize: 2})
	s.Nil(last.Next)
	s.Require().NotNil(last.Previous)
	s.Equal(2, *last.Previous)

	empty := NewPage[int](nil, 0, PageQuery{Page: 1, PageSize: 10})
	s.NotNil(empty.Results)
	s.Empty(empty.Results)
}

func (s *DTOSuite) TestNewTransactionResponse() {
	categoryID := uuid.New()
	tx := &models.Transaction{
		ID:          uuid.New(),
		CategoryID:  &categoryID,
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Description: "Groceries",
		Amount:      decimal.RequireFromString("42.5"),
		Type:        models.CategoryTypeExpense,
		Category:    &models.Category{ID: categoryID, Name: "Food"},
	}

	resp := NewTransactionResponse(tx)
	s.Equal("2024-03-05", resp.Date)
	s.Equal("42.50", resp.Amount)
	s.Equal(categoryID.String(), *resp.Category)
	s.Equal("Food", *resp.CategoryName)

	tx.CategoryID, tx.Category = nil, nil
	resp = NewTransactionResponse(tx)
	s.Nil(resp.Category)
	s.Nil(resp.CategoryName)
}

func (s *DTOSuite) TestNewGoalResponse() {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	goal := &models.Goal{
		ID:            uuid.New(),
		Title:         "Car",
		TargetAmount:  decimal.RequireFromString("1000"),
		CurrentAmount: decimal.RequireFromString("250"),
		Deadline:      time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC),
		Status:        models.GoalStatusInProgress,
	}

	resp := NewGoalResponse(goal, now)
	s.Equal("1000.00", resp.TargetAmount)
	s.Equal("250.00", resp.CurrentAmount)
	s.Equal(25.0, resp.ProgressPercentage)
	s.Equal(10, resp.DaysRemaining)
	s.Equal("2024-01-11", resp.Deadline)
}

func (s *DTOSuite) TestNewUserResponse() {
	user := models.NewUser("jane", "jane@example.com")
	user.ProfilePicture = "profile_pictures/a.png"

	resp := NewUserResponse(user, func(p string) string { return "/media/" + p })
	s.Equal("/media/profile_pictures/a.png", *resp.ProfilePicture)

	user.ProfilePicture = ""
	s.Nil(NewUserResponse(user, nil).ProfilePicture)
}
