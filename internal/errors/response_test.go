package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ResponseTestSuite defines the test suite for error responses
type ResponseTestSuite struct {
	suite.Suite
	traceID string
}

func (s *ResponseTestSuite) SetupTest() {
	s.traceID = "550e8400-e29b-41d4-a716-446655440000"
}

func TestResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) TestNewErrorResponse_BasicUsage() {
	response := NewErrorResponse(AuthInvalidCredentials, s.traceID)

	s.Equal("AUTH_001", response.Error.Code)
	s.Equal("Invalid credentials", response.Error.Message)
	s.Equal(s.traceID, response.Error.TraceID)
	s.Empty(response.Error.Details)
	s.Nil(response.Error.Fields)
}

func (s *ResponseTestSuite) TestNewErrorResponse_Options() {
	s.Run("details", func() {
		details := []string{"first", "second"}
		response := NewErrorResponse(ValidationGeneral, s.traceID, WithDetails(details...))
		s.Equal(details, response.Error.Details)
	})

	s.Run("message", func() {
		response := NewErrorResponse(SystemInternalError, s.traceID, WithMessage("custom"))
		s.Equal("custom", response.Error.Message)
	})

	s.Run("field", func() {
		response := NewErrorResponse(GoalInvalidAmount, s.traceID,
			WithMessage("Invalid amount"),
			WithField("amount", "A valid number is required."))

		s.Equal([]string{"A valid number is required."}, response.Error.Fields["amount"])
		s.Equal([]string{"amount: A valid number is required."}, response.Error.Details)
	})
}

func (s *ResponseTestSuite) TestNewValidationError() {
	response := NewValidationError(map[string]string{
		"title":    "Title cannot be empty",
		"deadline": "Deadline cannot be in the past",
	}, s.traceID)

	s.Equal(string(ValidationGeneral), response.Error.Code)
	s.Equal([]string{"Title cannot be empty"}, response.Error.Fields["title"])
	s.Equal([]string{
		"deadline: Deadline cannot be in the past",
		"title: Title cannot be empty",
	}, response.Error.Details)
	s.Equal(http.StatusBadRequest, response.GetHTTPStatus())
}

func (s *ResponseTestSuite) TestNewFieldValidationError_MultipleMessages() {
	response := NewFieldValidationError(map[string][]string{
		"password": {"This password is too short.", "This password is too common."},
	}, s.traceID)

	s.Len(response.Error.Details, 2)
	s.Len(response.Error.Fields["password"], 2)
}

func (s *ResponseTestSuite) TestNewValidationErrorFromList() {
	response := NewValidationErrorFromList([]string{"bad input"}, s.traceID)
	s.Equal([]string{"bad input"}, response.Error.Details)
	s.Equal(string(ValidationGeneral), response.Error.Code)
}

func (s *ResponseTestSuite) TestWrapSystemError_HidesInternalError() {
	internal := errors.New("pq: connection refused")

	response, err := WrapSystemError(internal, s.traceID)
	s.Equal(internal, err)
	s.Equal(string(SystemInternalError), response.Error.Code)
	s.NotContains(response.Error.Message, "connection refused")

	response, err = WrapDatabaseError(internal, s.traceID)
	s.Equal(internal, err)
	s.Equal(string(SystemDatabaseError), response.Error.Code)
}

func (s *ResponseTestSuite) TestToJSON() {
	response := NewValidationError(map[string]string{"email": "A user with this email already exists."}, s.traceID)

	data, err := response.ToJSON()
	s.Require().NoError(err)

	var decoded map[string]map[string]interface{}
	s.Require().NoError(json.Unmarshal(data, &decoded))

	body := decoded["error"]
	s.Equal("VALIDATION_001", body["code"])
	s.Equal(s.traceID, body["trace_id"])
	s.Contains(body["fields"], "email")
}

func (s *ResponseTestSuite) TestGetHTTPStatus() {
	testCases := []struct {
		name           string
		code           ErrorCode
		expectedStatus int
	}{
		{"Validation General", ValidationGeneral, http.StatusBadRequest},
		{"Invalid Credentials", AuthInvalidCredentials, http.StatusBadRequest},
		{"User Already Exists", UserAlreadyExists, http.StatusBadRequest},
		{"Goal Invalid Amount", GoalInvalidAmount, http.StatusBadRequest},
		{"Missing Token", AuthMissingToken, http.StatusUnauthorized},
		{"Invalid Refresh Token", AuthInvalidRefreshToken, http.StatusUnauthorized},
		{"Account Locked", AuthAccountLocked, http.StatusForbidden},
		{"Transaction Not Found", TransactionNotFound, http.StatusNotFound},
		{"Goal Not Found", GoalNotFound, http.StatusNotFound},
		{"Notification Not Found", NotificationNotFound, http.StatusNotFound},
		{"Route Not Found", SystemNotFound, http.StatusNotFound},
		{"Method Not Allowed", SystemMethodNotAllowed, http.StatusMethodNotAllowed},
		{"Goal Conflict", GoalConflict, http.StatusConflict},
		{"Rate Limit", SystemRateLimitExceeded, http.StatusTooManyRequests},
		{"Service Unavailable", SystemServiceUnavailable, http.StatusServiceUnavailable},
		{"Internal Error", SystemInternalError, http.StatusInternalServerError},
		{"Unknown", "UNKNOWN_999", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expectedStatus, GetHTTPStatus(tc.code))
		})
	}
}

func (s *ResponseTestSuite) TestClientAndServerErrors() {
	for _, code := range []ErrorCode{ValidationGeneral, AuthInvalidCredentials, CategoryNotFound, GoalConflict} {
		response := NewErrorResponse(code, s.traceID)
		s.True(response.IsClientError(), string(code))
		s.False(response.IsServerError(), string(code))
	}

	for _, code := range []ErrorCode{SystemInternalError, SystemDatabaseError, SystemServiceUnavailable} {
		response := NewErrorResponse(code, s.traceID)
		s.True(response.IsServerError(), string(code))
		s.False(response.IsClientError(), string(code))
	}
}

func (s *ResponseTestSuite) TestString() {
	str := NewErrorResponse(GoalNotFound, s.traceID).String()

	s.Contains(str, "GOAL_001")
	s.Contains(str, "Goal not found")
	s.Contains(str, s.traceID)
}
