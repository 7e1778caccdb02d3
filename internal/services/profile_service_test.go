package services

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories/repository_mocks"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ProfileServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	userRepo        *repository_mocks.MockUserRepositoryInterface
	passwordService *service_mocks.MockPasswordServiceInterface
	media           *service_mocks.MockMediaStorageInterface
	auditService    *service_mocks.MockAuditServiceInterface
	service         ProfileServiceInterface
	user            *models.User
}

func (s *ProfileServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.media = service_mocks.NewMockMediaStorageInterface(s.ctrl)
	s.auditService = service_mocks.NewMockAuditServiceInterface(s.ctrl)
	s.auditService.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.service = NewProfileService(s.userRepo, s.passwordService, s.media, s.auditService,
		config.MediaConfig{MaxUploadBytes: 1024}, nil)

	s.user = models.NewUser("alice", "alice@example.com")
	s.user.ID = uuid.New()
	s.user.PasswordHash = "old-hash"
}

func (s *ProfileServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProfileServiceSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceTestSuite))
}

// uploadedFile builds a real multipart file header the way the echo form
// parser would hand it over
func (s *ProfileServiceTestSuite) uploadedFile(name string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("profile_picture", name)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	s.Require().NoError(err)
	return form.File["profile_picture"][0]
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func (s *ProfileServiceTestSuite) TestUpdateProfile_Fields() {
	update := dto.ProfileUpdate{
		FirstName:          strPtr("Alice"),
		Email:              strPtr("New@Example.com"),
		EmailNotifications: boolPtr(false),
		ThemePreference:    strPtr(models.ThemeDark),
	}

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().EmailExists("new@example.com", s.user.ID).Return(false, nil)
	s.userRepo.EXPECT().Update(gomock.Any()).Return(nil)

	got, err := s.service.UpdateProfile(s.user.ID, update, nil, testIP, testUserAgent)
	s.Require().NoError(err)
	s.Equal("Alice", got.FirstName)
	s.Equal("new@example.com", got.Email)
	s.False(got.EmailNotifications)
	s.Equal(models.ThemeDark, got.ThemePreference)
	s.Equal("old-hash", got.PasswordHash)
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_UnchangedIdentitySkipsUniquenessCheck() {
	update := dto.ProfileUpdate{Username: strPtr("alice"), Email: strPtr("ALICE@example.com")}

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().Update(gomock.Any()).Return(nil)

	_, err := s.service.UpdateProfile(s.user.ID, update, nil, testIP, testUserAgent)
	s.NoError(err)
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_TakenUsername() {
	update := dto.ProfileUpdate{Username: strPtr("bob")}

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().UsernameExists("bob", s.user.ID).Return(true, nil)

	_, err := s.service.UpdateProfile(s.user.ID, update, nil, testIP, testUserAgent)

	var verrs models.ValidationErrors
	s.Require().True(errors.As(err, &verrs))
	s.Equal(msgUsernameTaken, verrs["username"])
	s.Equal("alice", s.user.Username)
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_Password() {
	s.Run("weak password", func() {
		s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
		s.passwordService.EXPECT().ValidatePassword("123").Return(ErrPasswordEntirelyNumber)

		_, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{Password: strPtr("123")}, nil, testIP, testUserAgent)

		var verrs models.ValidationErrors
		s.Require().True(errors.As(err, &verrs))
		s.Contains(verrs, "password")
	})

	s.Run("hashed before saving", func() {
		s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
		s.passwordService.EXPECT().ValidatePassword("new-secret").Return(nil)
		s.passwordService.EXPECT().HashPassword("new-secret").Return("new-hash", nil)
		s.userRepo.EXPECT().Update(gomock.Any()).DoAndReturn(func(u *models.User) error {
			s.Equal("new-hash", u.PasswordHash)
			return nil
		})

		_, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{Password: strPtr("new-secret")}, nil, testIP, testUserAgent)
		s.NoError(err)
	})
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_ReplacesPicture() {
	s.user.ProfilePicture = "profile_pics/old.png"
	picture := s.uploadedFile("me.png", []byte("png-bytes"))

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.media.EXPECT().Save(profilePictureDir, "me.png", gomock.Any()).DoAndReturn(func(_, _ string, src io.Reader) (string, error) {
		data, err := io.ReadAll(src)
		s.NoError(err)
		s.Equal("png-bytes", string(data))
		return "profile_pics/new.png", nil
	})
	s.userRepo.EXPECT().Update(gomock.Any()).Return(nil)
	s.media.EXPECT().Delete("profile_pics/old.png").Return(errors.New("permission denied"))

	got, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{}, picture, testIP, testUserAgent)
	s.Require().NoError(err, "old file cleanup failures are not surfaced")
	s.Equal("profile_pics/new.png", got.ProfilePicture)
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_RejectsBadPicture() {
	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{name: "not an image", file: "notes.txt", content: []byte("hello")},
		{name: "too large", file: "big.jpg", content: bytes.Repeat([]byte("x"), 2048)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)

			_, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{}, s.uploadedFile(tt.file, tt.content), testIP, testUserAgent)

			var verrs models.ValidationErrors
			s.Require().True(errors.As(err, &verrs))
			s.Contains(verrs, "profile_picture")
		})
	}
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_RemovePicture() {
	s.user.ProfilePicture = "profile_pics/old.png"

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().Update(gomock.Any()).Return(nil)
	s.media.EXPECT().Delete("profile_pics/old.png").Return(nil)

	got, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{RemoveProfilePicture: true}, nil, testIP, testUserAgent)
	s.Require().NoError(err)
	s.Empty(got.ProfilePicture)
}

func (s *ProfileServiceTestSuite) TestUpdateProfile_DiscardsPictureWhenSaveFails() {
	picture := s.uploadedFile("me.jpg", []byte("jpg"))

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.media.EXPECT().Save(profilePictureDir, "me.jpg", gomock.Any()).Return("profile_pics/new.jpg", nil)
	s.userRepo.EXPECT().Update(gomock.Any()).Return(errors.New("db down"))
	s.media.EXPECT().Delete("profile_pics/new.jpg").Return(nil)

	_, err := s.service.UpdateProfile(s.user.ID, dto.ProfileUpdate{}, picture, testIP, testUserAgent)
	s.Error(err)
}

func (s *ProfileServiceTestSuite) TestUpdateSettings() {
	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().UpdateFields(s.user.ID, map[string]interface{}{
		"email_notifications": true,
		"theme_preference":    models.ThemeLight,
		"currency_preference": models.CurrencyEUR,
	}).Return(nil)

	got, err := s.service.UpdateSettings(s.user.ID, dto.SettingsRequest{
		ThemePreference:    strPtr(models.ThemeLight),
		CurrencyPreference: strPtr(models.CurrencyEUR),
	}, testIP, testUserAgent)
	s.Require().NoError(err)
	s.Equal(models.ThemeLight, got.ThemePreference)
	s.Equal(models.CurrencyEUR, got.CurrencyPreference)
}

func (s *ProfileServiceTestSuite) TestUpdateSettings_NoChanges() {
	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)

	got, err := s.service.UpdateSettings(s.user.ID, dto.SettingsRequest{}, testIP, testUserAgent)
	s.NoError(err)
	s.Equal(s.user, got)
}

func (s *ProfileServiceTestSuite) TestDeleteAccount() {
	s.user.ProfilePicture = "profile_pics/me.png"

	s.userRepo.EXPECT().GetByID(s.user.ID).Return(s.user, nil)
	s.userRepo.EXPECT().Delete(s.user.ID).Return(nil)
	s.media.EXPECT().Delete("profile_pics/me.png").Return(nil)

	s.NoError(s.service.DeleteAccount(s.user.ID, testIP, testUserAgent))
}
