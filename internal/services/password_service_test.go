package services

import (
	"errors"
	"strings"
	"testing"

	"finance-tracker/internal/config"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type PasswordServiceTestSuite struct {
	suite.Suite
	service PasswordServiceInterface
}

func (s *PasswordServiceTestSuite) SetupTest() {
	s.service = NewPasswordService(config.SecurityConfig{BCryptCost: bcrypt.MinCost, PasswordMinLength: 8})
}

func TestPasswordServiceSuite(t *testing.T) {
	suite.Run(t, new(PasswordServiceTestSuite))
}

func (s *PasswordServiceTestSuite) TestValidatePassword() {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "correct-horse"},
		{name: "empty", password: "", wantErr: "password cannot be empty"},
		{name: "too short", password: "abc12", wantErr: "at least 8 characters"},
		{name: "entirely numeric", password: "1234567890", wantErr: "entirely numeric"},
		{name: "too long", password: strings.Repeat("a", MaxPasswordLength+1), wantErr: "must not exceed"},
		{name: "with spaces", password: "secure pass 1"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.ValidatePassword(tt.password)
			if tt.wantErr == "" {
				s.NoError(err)
				return
			}
			s.Error(err)
			s.Contains(err.Error(), tt.wantErr)
		})
	}
}

func (s *PasswordServiceTestSuite) TestValidatePassword_StrictPolicy() {
	strict := NewPasswordService(config.SecurityConfig{
		BCryptCost:          bcrypt.MinCost,
		PasswordMinLength:   12,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
	})

	s.True(errors.Is(strict.ValidatePassword("securepass123!"), ErrPasswordNoUppercase))
	s.True(errors.Is(strict.ValidatePassword("SECUREPASS123!"), ErrPasswordNoLowercase))
	s.True(errors.Is(strict.ValidatePassword("SecurePass!!!!"), ErrPasswordNoNumber))
	s.True(errors.Is(strict.ValidatePassword("SecurePass1234"), ErrPasswordNoSpecial))
	s.NoError(strict.ValidatePassword("C0mpl3x!P@ssw0rd"))
}

func (s *PasswordServiceTestSuite) TestHashPassword() {
	hash, err := s.service.HashPassword("correct-horse")
	s.Require().NoError(err)
	s.NotEqual("correct-horse", hash)
	s.True(strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$"))

	s.True(s.service.ComparePassword("correct-horse", hash))
	s.False(s.service.ComparePassword("wrong-horse", hash))
}

func (s *PasswordServiceTestSuite) TestHashPassword_RejectsInvalid() {
	hash, err := s.service.HashPassword("short")
	s.Error(err)
	s.Empty(hash)
}

func (s *PasswordServiceTestSuite) TestHashPassword_UniqueSalts() {
	first, err := s.service.HashPassword("correct-horse")
	s.Require().NoError(err)
	second, err := s.service.HashPassword("correct-horse")
	s.Require().NoError(err)
	s.NotEqual(first, second)
}

func (s *PasswordServiceTestSuite) TestComparePassword_InvalidHash() {
	s.False(s.service.ComparePassword("anything", "not-a-hash"))
}

func (s *PasswordServiceTestSuite) TestNewPasswordService_DefaultsOutOfRangeCost() {
	svc := NewPasswordService(config.SecurityConfig{BCryptCost: 99}).(*PasswordService)
	s.Equal(bcrypt.DefaultCost, svc.cost)
	s.Equal(DefaultMinPasswordLength, svc.policy.PasswordMinLength)
}
