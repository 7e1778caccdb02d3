package dto

import (
	"strings"
	"time"

	"finance-tracker/internal/models"
)

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Username             *string `json:"username" validate:"omitempty,max=150,username"`
	Email                *string `json:"email" validate:"omitempty,email"`
	Password             *string `json:"password"`
	FirstName            *string `json:"first_name" validate:"omitempty,max=150"`
	LastName             *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber          *string `json:"phone_number" validate:"omitempty,phone"`
	EmailNotifications   *bool   `json:"email_notifications"`
	ThemePreference      *string `json:"theme_preference" validate:"omitempty,theme"`
	CurrencyPreference   *string `json:"currency_preference" validate:"omitempty,currency"`
	RemoveProfilePicture bool    `json:"remove_profile_picture"`
}

// IsEmpty reports whether the update changes nothing
func (p ProfileUpdate) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil &&
		p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil &&
		p.EmailNotifications == nil && p.ThemePreference == nil &&
		p.CurrencyPreference == nil && !p.RemoveProfilePicture
}

// isBlankValue matches the placeholder values clients send for "no change"
func isBlankValue(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "null", "undefined", "None":
		return true
	}
	return false
}

// NewProfileUpdate builds an update from flat form or JSON values. Blank
// placeholders are dropped and email_notifications is true only for "true".
func NewProfileUpdate(values map[string]string) ProfileUpdate {
	var update ProfileUpdate

	text := func(key string) *string {
		v, ok := values[key]
		if !ok || isBlankValue(v) {
			return nil
		}
		v = strings.TrimSpace(v)
		return &v
	}

	update.Username = text("username")
	update.Email = text("email")
	update.Password = text("password")
	update.FirstName = text("first_name")
	update.LastName = text("last_name")
	update.PhoneNumber = text("phone_number")
	update.ThemePreference = text("theme_preference")
	update.CurrencyPreference = text("currency_preference")

	if v := text("email_notifications"); v != nil {
		enabled := strings.EqualFold(*v, "true")
		update.EmailNotifications = &enabled
	}

	if v := text("remove_profile_picture"); v != nil {
		update.RemoveProfilePicture = strings.EqualFold(*v, "true")
	}

	return update
}

// SettingsRequest updates notification and display preferences
type SettingsRequest struct {
	EmailNotifications *bool   `json:"email_notifications"`
	ThemePreference    *string `json:"theme_preference" validate:"omitempty,theme"`
	CurrencyPreference *string `json:"currency_preference" validate:"omitempty,currency"`
}

// SettingsResponse echoes the stored preferences
type SettingsResponse struct {
	EmailNotifications bool   `json:"email_notifications"`
	ThemePreference    string `json:"theme_preference"`
	CurrencyPreference string `json:"currency_preference"`
}

// ActivityResponse is one entry of the caller's auth and profile history
type ActivityResponse struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource"`
	IPAddress string                 `json:"ip_address"`
	UserAgent string                 `json:"user_agent"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewActivityResponses(logs []*models.AuditLog) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ActivityResponse{
			ID:        l.ID.String(),
			Action:    l.Action,
			Resource:  l.Resource,
			IPAddress: l.IPAddress,
			UserAgent: l.UserAgent,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	return out
}
