package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_NormalizeAndValidate(t *testing.T) {
	c := &Category{Name: "  Food  "}
	c.Normalize()

	require.NoError(t, c.Validate())
	assert.Equal(t, "Food", c.Name)
	assert.Equal(t, CategoryTypeExpense, c.Type)
	assert.Equal(t, DefaultCategoryColor, c.Color)
}

func TestCategory_ValidateFields(t *testing.T) {
	c := &Category{
		Name:  strings.Repeat("x", 51),
		Type:  "savings",
		Icon:  strings.Repeat("i", 51),
		Color: "red",
	}

	err := c.Validate()

	var fields ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "icon")
	assert.Contains(t, fields, "color")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{}
	assert.NoError(t, errs.OrNil())

	errs.Add("name", "required")
	errs.Add("amount", "positive")
	errs.Add("name", "ignored second message")

	assert.Equal(t, "validation failed: amount: positive; name: required", errs.Error())
}

func TestNotificationJob_Backoff(t *testing.T) {
	job := &NotificationJob{MaxRetries: 2}
	require.NoError(t, job.BeforeCreate(nil))

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, JobPriorityNormal, job.Priority)
	assert.True(t, job.CanRetry())

	job.RetryCount = 2
	assert.False(t, job.CanRetry())
	assert.True(t, job.NextScheduledTime().After(job.ScheduledAt))
}

func TestIsValidNotificationType(t *testing.T) {
	assert.True(t, IsValidNotificationType(NotificationTypeGoalDeadline))
	assert.False(t, IsValidNotificationType("PROMO"))
}
