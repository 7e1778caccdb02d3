package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "finance-tracker/internal/errors"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func newAuthedContext(e *echo.Echo, req *http.Request, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
	}
	return c, rec
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	id := uuid.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := getUserIDFromContext(c)
	assert.ErrorIs(t, err, ErrUnauthorized)

	c.Set(ContextKeyUserID, uuid.Nil)
	_, err = getUserIDFromContext(c)
	assert.Error(t, err)

	c.Set(ContextKeyUserID, id)
	got, err := getUserIDFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestGetClientIP(t *testing.T) {
	e := echo.New()

	testCases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"remote addr", nil, "192.0.2.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tc.want, getClientIP(c))
		})
	}
}

func TestBindAndValidate_InvalidBody(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	req := newJSONRequest(http.MethodPost, "/", "{not json")
	c, rec := newAuthedContext(e, req, nil)

	var body struct {
		Name string `json:"name" validate:"required"`
	}
	ok, err := bindAndValidate(c, &body)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apierrors.ValidationInvalidFormat), decodeErrorResponse(t, rec).Error.Code)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	req := newJSONRequest(http.MethodPost, "/", map[string]string{})
	c, rec := newAuthedContext(e, req, nil)

	var body struct {
		Name string `json:"name" validate:"required"`
	}
	ok, _ := bindAndValidate(c, &body)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(t, rec).Error.Fields, "name")
}
