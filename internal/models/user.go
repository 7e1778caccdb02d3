package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"

	DefaultMaxFailedLoginAttempts = 5
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

	ValidThemes     = []string{ThemeLight, ThemeDark, ThemeSystem}
	ValidCurrencies = []string{CurrencyUSD, CurrencyEUR, CurrencyGBP}
)

type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Username            string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName           string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName            string     `gorm:"type:varchar(150)" json:"last_name"`
	PhoneNumber         string     `gorm:"type:varchar(20)" json:"phone_number"`
	ProfilePicture      string     `gorm:"type:varchar(255)" json:"-"`
	EmailNotifications  bool       `gorm:"not null;default:true" json:"email_notifications"`
	ThemePreference     string     `gorm:"type:varchar(10);not null;default:'system'" json:"theme_preference"`
	CurrencyPreference  string     `gorm:"type:varchar(3);not null;default:'USD'" json:"currency_preference"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedAt            *time.Time `gorm:"index" json:"-"`
	LastLoginAt         *time.Time `gorm:"index" json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `gorm:"not null" json:"date_joined"`
	UpdatedAt           time.Time  `gorm:"not null" json:"-"`
}

// NewUser returns a user with the account defaults applied.
func NewUser(username, email string) *User {
	return &User{
		Username:           strings.TrimSpace(username),
		Email:              strings.ToLower(strings.TrimSpace(email)),
		EmailNotifications: true,
		ThemePreference:    ThemeSystem,
		CurrencyPreference: CurrencyUSD,
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ThemePreference == "" {
		u.ThemePreference = ThemeSystem
	}
	if u.CurrencyPreference == "" {
		u.CurrencyPreference = CurrencyUSD
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	// Column-map updates carry no full struct to validate.
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	return u.Validate()
}

func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}

	if len(u.Username) > 150 || !usernameRegex.MatchString(u.Username) {
		return errors.New("invalid username")
	}

	if u.Email == "" {
		return errors.New("email is required")
	}

	if !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}

	if !contains(ValidThemes, u.ThemePreference) {
		return fmt.Errorf("invalid theme preference: %s", u.ThemePreference)
	}

	if !contains(ValidCurrencies, u.CurrencyPreference) {
		return fmt.Errorf("invalid currency preference: %s", u.CurrencyPreference)
	}

	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *User) Lock() {
	now := time.Now()
	u.LockedAt = &now
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

// IncrementFailedAttempts records a failed login and locks the account once
// maxAttempts is reached. It reports whether the account became locked.
func (u *User) IncrementFailedAttempts(maxAttempts int) bool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedLoginAttempts
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts && !u.IsLocked() {
		u.Lock()
		return true
	}
	return false
}

func (u *User) ResetFailedAttempts() {
	u.FailedLoginAttempts = 0
}

func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

func (u *User) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", u.FirstName, u.LastName))
}

// DisplayName is used in outgoing mail.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

func (u *User) TableName() string {
	return "users"
}

// IsEmailIdentifier reports whether a login identifier should be matched
// against the email column rather than the username.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
