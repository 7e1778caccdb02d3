package dto

import (
	"strings"
	"time"

	"finance-tracker/internal/models"
)

// Auth Request DTOs

// RegisterRequest contains user registration data
type RegisterRequest struct {
	Username           string `json:"username" validate:"required,max=150,username"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required"`
	Password2          string `json:"password2" validate:"omitempty,eqfield=Password"`
	FirstName          string `json:"first_name" validate:"max=150"`
	LastName           string `json:"last_name" validate:"max=150"`
	PhoneNumber        string `json:"phone_number" validate:"omitempty,phone"`
	EmailNotifications *bool  `json:"email_notifications"`
	ThemePreference    string `json:"theme_preference" validate:"omitempty,theme"`
	CurrencyPreference string `json:"currency_preference" validate:"omitempty,currency"`
}

// LoginRequest contains login credentials. Identifier is a username or an
// email address; username and email are accepted as aliases.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

// LoginIdentifier returns the first non-empty identifier field
func (r LoginRequest) LoginIdentifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// RefreshTokenRequest contains refresh token for renewal
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// Auth Response DTOs

// JWTPair is the access/refresh token pair
type JWTPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string       `json:"token"`
	JWT   JWTPair      `json:"jwt"`
	User  UserResponse `json:"user"`
}

// UserResponse represents the authenticated user's profile
type UserResponse struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	PhoneNumber        string    `json:"phone_number"`
	ProfilePicture     *string   `json:"profile_picture"`
	EmailNotifications bool      `json:"email_notifications"`
	ThemePreference    string    `json:"theme_preference"`
	CurrencyPreference string    `json:"currency_preference"`
	DateJoined         time.Time `json:"date_joined"`
}

// NewUserResponse maps a user. pictureURL resolves the stored picture path
// to a public URL.
func NewUserResponse(u *models.User, pictureURL func(string) string) UserResponse {
	resp := UserResponse{
		ID:                 u.ID.String(),
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PhoneNumber:        u.PhoneNumber,
		EmailNotifications: u.EmailNotifications,
		ThemePreference:    u.ThemePreference,
		CurrencyPreference: u.CurrencyPreference,
		DateJoined:         u.CreatedAt,
	}

	if u.ProfilePicture != "" {
		url := u.ProfilePicture
		if pictureURL != nil {
			url = pictureURL(u.ProfilePicture)
		}
		resp.ProfilePicture = &url
	}

	return resp
}

// Session is the outcome of a successful login or registration
type Session struct {
	User  *models.User
	Token string
	JWT   JWTPair
}
