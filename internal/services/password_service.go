package services

import (
	"errors"
	"fmt"
	"regexp"

	"finance-tracker/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMinPasswordLength = 8
	MaxPasswordLength        = 72 // Bcrypt algorithm limitation
)

var (
	ErrPasswordEmpty          = errors.New("password cannot be empty")
	ErrPasswordTooLong        = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordEntirelyNumber = errors.New("This password is entirely numeric.")
	ErrPasswordNoUppercase    = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase    = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber       = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial      = errors.New("password must contain at least one special character")

	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	numberRegex    = regexp.MustCompile(`[0-9]`)
	numericRegex   = regexp.MustCompile(`^[0-9]+$`)
	specialRegex   = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{}|;:,.<>?]`)
)

// PasswordService handles password hashing and validation
type PasswordService struct {
	cost   int
	policy config.SecurityConfig
}

// NewPasswordService creates a password service. The character class rules
// are opt-in through the security config.
func NewPasswordService(security config.SecurityConfig) PasswordServiceInterface {
	cost := security.BCryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if security.PasswordMinLength <= 0 {
		security.PasswordMinLength = DefaultMinPasswordLength
	}

	return &PasswordService{
		cost:   cost,
		policy: security,
	}
}

// ValidatePassword checks a password against the configured policy
func (ps *PasswordService) ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}

	if len(password) < ps.policy.PasswordMinLength {
		return fmt.Errorf("This password is too short. It must contain at least %d characters.", ps.policy.PasswordMinLength)
	}

	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	if numericRegex.MatchString(password) {
		return ErrPasswordEntirelyNumber
	}

	if ps.policy.RequireUppercase && !uppercaseRegex.MatchString(password) {
		return ErrPasswordNoUppercase
	}

	if ps.policy.RequireLowercase && !lowercaseRegex.MatchString(password) {
		return ErrPasswordNoLowercase
	}

	if ps.policy.RequireNumbers && !numberRegex.MatchString(password) {
		return ErrPasswordNoNumber
	}

	if ps.policy.RequireSpecialChars && !specialRegex.MatchString(password) {
		return ErrPasswordNoSpecial
	}

	return nil
}

// HashPassword validates and hashes a password using bcrypt
func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword reports whether password matches the bcrypt hash
func (ps *PasswordService) ComparePassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
