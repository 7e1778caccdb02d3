package services

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

const profilePictureDir = "profile_pics"

var allowedPictureExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ProfileService manages the signed-in user's own account
type ProfileService struct {
	userRepo        repositories.UserRepositoryInterface
	passwordService PasswordServiceInterface
	media           MediaStorageInterface
	auditService    AuditServiceInterface
	maxUploadBytes  int64
	logger          *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	userRepo repositories.UserRepositoryInterface,
	passwordService PasswordServiceInterface,
	media MediaStorageInterface,
	auditService AuditServiceInterface,
	mediaCfg config.MediaConfig,
	logger *slog.Logger,
) ProfileServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		userRepo:        userRepo,
		passwordService: passwordService,
		media:           media,
		auditService:    auditService,
		maxUploadBytes:  mediaCfg.MaxUploadBytes,
		logger:          logger,
	}
}

func (s *ProfileService) GetProfile(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. Field problems are collected into
// models.ValidationErrors and nothing is written. A new picture replaces the
// stored one; removing the old file is best effort.
func (s *ProfileService) UpdateProfile(userID uuid.UUID, update dto.ProfileUpdate, picture *multipart.FileHeader, ipAddress, userAgent string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	errs := models.ValidationErrors{}
	changed := make([]string, 0)

	var username, email string
	if update.Username != nil && *update.Username != user.Username {
		username = strings.TrimSpace(*update.Username)
	}
	if update.Email != nil {
		if normalized := strings.ToLower(strings.TrimSpace(*update.Email)); normalized != user.Email {
			email = normalized
		}
	}
	if err := checkIdentityAvailable(s.userRepo, errs, username, email, user.ID); err != nil {
		return nil, err
	}

	if update.Password != nil {
		if err := s.passwordService.ValidatePassword(*update.Password); err != nil {
			errs.Add("password", err.Error())
		}
	}

	if picture != nil {
		s.checkPicture(errs, picture)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if update.Password != nil {
		hashed, err := s.passwordService.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashed
		changed = append(changed, "password")
	}

	if username != "" {
		user.Username = username
		changed = append(changed, "username")
	}
	if email != "" {
		user.Email = email
		changed = append(changed, "email")
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
		changed = append(changed, "first_name")
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
		changed = append(changed, "last_name")
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
		changed = append(changed, "phone_number")
	}
	changed = append(changed, applyPreferences(user, update.EmailNotifications, update.ThemePreference, update.CurrencyPreference)...)

	oldPicture := user.ProfilePicture
	if picture != nil {
		stored, err := s.storePicture(picture)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = stored
		changed = append(changed, "profile_picture")
	} else if update.RemoveProfilePicture && oldPicture != "" {
		user.ProfilePicture = ""
		changed = append(changed, "profile_picture")
	}

	if err := user.Validate(); err != nil {
		s.discardPicture(user.ProfilePicture, oldPicture)
		return nil, models.ValidationErrors{"non_field_errors": err.Error()}
	}

	if err := s.userRepo.Update(user); err != nil {
		s.discardPicture(user.ProfilePicture, oldPicture)
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, models.ValidationErrors{"email": msgEmailTaken}
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if oldPicture != "" && oldPicture != user.ProfilePicture {
		if err := s.media.Delete(oldPicture); err != nil {
			s.logger.Warn("failed to delete old profile picture",
				"error", err,
				"user_id", user.ID,
				"path", oldPicture)
		}
	}

	s.auditService.Record(&user.ID, models.AuditActionProfileUpdated, models.AuditResourceProfile, ipAddress, userAgent,
		map[string]interface{}{"fields": changed})

	return user, nil
}

func (s *ProfileService) UpdateSettings(userID uuid.UUID, req dto.SettingsRequest, ipAddress, userAgent string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	changed := applyPreferences(user, req.EmailNotifications, req.ThemePreference, req.CurrencyPreference)
	if len(changed) == 0 {
		return user, nil
	}

	if err := user.Validate(); err != nil {
		return nil, models.ValidationErrors{"non_field_errors": err.Error()}
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email_notifications": user.EmailNotifications,
		"theme_preference":    user.ThemePreference,
		"currency_preference": user.CurrencyPreference,
	}); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.auditService.Record(&user.ID, models.AuditActionSettingsUpdated, models.AuditResourceProfile, ipAddress, userAgent,
		map[string]interface{}{"fields": changed})

	return user, nil
}

// DeleteAccount removes the user. Owned rows go with it through the
// cascading foreign keys; the stored picture is removed best effort.
func (s *ProfileService) DeleteAccount(userID uuid.UUID, ipAddress, userAgent string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if user.ProfilePicture != "" {
		if err := s.media.Delete(user.ProfilePicture); err != nil {
			s.logger.Warn("failed to delete profile picture",
				"error", err,
				"user_id", user.ID,
				"path", user.ProfilePicture)
		}
	}

	// The user row is gone, so the entry is recorded without an owner.
	s.auditService.Record(nil, models.AuditActionAccountDeleted, models.AuditResourceProfile, ipAddress, userAgent,
		map[string]interface{}{"user_id": user.ID.String(), "username": user.Username})

	return nil
}

func (s *ProfileService) checkPicture(errs models.ValidationErrors, picture *multipart.FileHeader) {
	ext := strings.ToLower(filepath.Ext(picture.Filename))
	if !allowedPictureExtensions[ext] {
		errs.Add("profile_picture", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return
	}
	if s.maxUploadBytes > 0 && picture.Size > s.maxUploadBytes {
		errs.Add("profile_picture", fmt.Sprintf("Ensure the file is no larger than %d bytes.", s.maxUploadBytes))
	}
}

func (s *ProfileService) storePicture(picture *multipart.FileHeader) (string, error) {
	src, err := picture.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded picture: %w", err)
	}
	defer src.Close()

	stored, err := s.media.Save(profilePictureDir, picture.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to store profile picture: %w", err)
	}
	return stored, nil
}

// discardPicture removes a freshly stored picture when the update that
// carried it is not persisted
func (s *ProfileService) discardPicture(current, previous string) {
	if current == "" || current == previous {
		return
	}
	if err := s.media.Delete(current); err != nil {
		s.logger.Warn("failed to discard unsaved profile picture", "error", err, "path", current)
	}
}

// applyPreferences copies the non-nil preference fields onto user and
// returns the names of the fields it set
func applyPreferences(user *models.User, emailNotifications *bool, theme, currency *string) []string {
	var changed []string
	if emailNotifications != nil {
		user.EmailNotifications = *emailNotifications
		changed = append(changed, "email_notifications")
	}
	if theme != nil {
		user.ThemePreference = *theme
		changed = append(changed, "theme_preference")
	}
	if currency != nil {
		user.CurrencyPreference = *currency
		changed = append(changed, "currency_preference")
	}
	return changed
}
