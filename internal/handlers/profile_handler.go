package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"finance-tracker/internal/config"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

const profilePictureField = "profile_picture"

// ProfileHandler serves the authenticated user's own profile, settings,
// account deletion and activity history
type ProfileHandler struct {
	profileService services.ProfileServiceInterface
	auditService   services.AuditServiceInterface
	media          services.MediaStorageInterface
	maxUpload      int64
	pagination     config.PaginationConfig
}

func NewProfileHandler(
	profileService services.ProfileServiceInterface,
	auditService services.AuditServiceInterface,
	media services.MediaStorageInterface,
	mediaCfg config.MediaConfig,
	pagination config.PaginationConfig,
) *ProfileHandler {
	maxUpload := mediaCfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	if pagination.DefaultPageSize <= 0 {
		pagination.DefaultPageSize = 10
	}
	if pagination.MaxPageSize <= 0 {
		pagination.MaxPageSize = 100
	}
	return &ProfileHandler{
		profileService: profileService,
		auditService:   auditService,
		media:          media,
		maxUpload:      maxUpload,
		pagination:     pagination,
	}
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Router /auth/profile/ [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.profileService.GetProfile(userID)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user, h.media.URL))
}

// UpdateProfile applies a partial update sent as JSON or multipart form.
// Placeholder values ("", "null", "undefined") leave a field untouched and
// a profile_picture file replaces the stored picture.
// @Summary Update profile
// @Tags Profile
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Field errors"
// @Router /auth/profile/ [patch]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	values, picture, err := h.readProfileForm(c)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails(err.Error()))
	}

	update := dto.NewProfileUpdate(values)
	if err := c.Validate(update); err != nil {
		return SendValidationError(c, err)
	}

	user, err := h.profileService.UpdateProfile(userID, update, picture, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user, h.media.URL))
}

// readProfileForm flattens the request body into string values. JSON
// scalars are stringified and nulls dropped.
func (h *ProfileHandler) readProfileForm(c echo.Context) (map[string]string, *multipart.FileHeader, error) {
	req := c.Request()
	values := make(map[string]string)

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUpload+(1<<20))
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid multipart form")
		}
		for key, vs := range form.Value {
			if len(vs) > 0 {
				values[key] = vs[0]
			}
		}
		if files := form.File[profilePictureField]; len(files) > 0 {
			return values, files[0], nil
		}
		return values, nil, nil
	}

	if req.ContentLength == 0 {
		return values, nil, nil
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("invalid request body")
	}
	for key, v := range raw {
		switch typed := v.(type) {
		case nil:
		case string:
			values[key] = typed
		case bool:
			values[key] = strconv.FormatBool(typed)
		case float64:
			values[key] = strconv.FormatFloat(typed, 'f', -1, 64)
		default:
			return nil, nil, fmt.Errorf("field %q must be a scalar value", key)
		}
	}
	return values, nil, nil
}

// UpdateSettings changes notification and display preferences
// @Summary Update settings
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SettingsRequest true "Preferences"
// @Success 200 {object} dto.SettingsResponse
// @Router /auth/settings/ [patch]
func (h *ProfileHandler) UpdateSettings(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SettingsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.profileService.UpdateSettings(userID, req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SettingsResponse{
		EmailNotifications: user.EmailNotifications,
		ThemePreference:    user.ThemePreference,
		CurrencyPreference: user.CurrencyPreference,
	})
}

// DeleteAccount removes the caller and everything they own
// @Summary Delete account
// @Tags Profile
// @Security BearerAuth
// @Success 204
// @Router /auth/delete/ [delete]
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := h.profileService.DeleteAccount(userID, getClientIP(c), c.Request().UserAgent()); err != nil {
		return SendServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Activity lists the caller's recorded auth and profile events, newest first
func (h *ProfileHandler) Activity(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var query dto.PageQuery
	if err := c.Bind(&query); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid query parameters"))
	}
	query = query.Normalize(h.pagination.DefaultPageSize, h.pagination.MaxPageSize)

	logs, total, err := h.auditService.GetUserActivity(userID, query.Offset(), query.PageSize)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidUserID) {
			return SendError(c, errors.AuthMissingToken)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewPage(dto.NewActivityResponses(logs), total, query))
}
