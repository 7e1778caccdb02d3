package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoverySuite struct {
	suite.Suite
	echo *echo.Echo
	logs *bytes.Buffer
	mw   echo.MiddlewareFunc
}

func (s *PanicRecoverySuite) SetupTest() {
	s.echo = echo.New()
	s.logs = &bytes.Buffer{}
	s.mw = PanicRecovery(slog.New(slog.NewJSONHandler(s.logs, nil)))
}

func TestPanicRecoverySuite(t *testing.T) {
	suite.Run(t, new(PanicRecoverySuite))
}

func (s *PanicRecoverySuite) serve(traceID string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodPost, "/api/goals/", nil), rec)
	if traceID != "" {
		c.Set(TraceIDContextKey, traceID)
	}

	s.NotPanics(func() { _ = s.mw(h)(c) })
	return rec
}

func (s *PanicRecoverySuite) TestPanicValues() {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "string", value: "boom"},
		{name: "error", value: http.ErrBodyNotAllowed},
		{name: "int", value: 7},
		{name: "nil", value: nil},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.serve("trace-123", func(echo.Context) error { panic(tt.value) })

			s.Equal(http.StatusInternalServerError, rec.Code)

			var body errors.ErrorResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			s.Equal(string(errors.SystemInternalError), body.Error.Code)
			s.Equal("trace-123", body.Error.TraceID)
		})
	}
}

func (s *PanicRecoverySuite) TestLogsPanicWithStack() {
	s.serve("trace-log", func(echo.Context) error { panic("ledger exploded") })

	var record map[string]interface{}
	s.Require().NoError(json.Unmarshal(s.logs.Bytes(), &record))
	s.Equal("ERROR", record["level"])
	s.Equal("panic recovered", record["msg"])
	s.Equal("ledger exploded", record["panic"])
	s.Equal("trace-log", record["trace_id"])
	s.Equal("http", record["component"])
	s.Equal("/api/goals/", record["path"])
	s.Contains(record["stack"], "panic_recovery")
}

func (s *PanicRecoverySuite) TestMissingTraceID() {
	rec := s.serve("", func(echo.Context) error { panic("no trace") })

	var body errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("unknown", body.Error.TraceID)
}

func (s *PanicRecoverySuite) TestPassThrough() {
	rec := s.serve("t", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]string{"id": "1"})
	})

	s.Equal(http.StatusCreated, rec.Code)
	s.Empty(s.logs.String())
}

func (s *PanicRecoverySuite) TestCommittedResponseKept() {
	rec := s.serve("t", func(c echo.Context) error {
		_ = c.String(http.StatusAccepted, "partial")
		panic("late")
	})

	s.Equal(http.StatusAccepted, rec.Code)
	s.Equal("partial", rec.Body.String())
}

func (s *PanicRecoverySuite) TestAbortHandlerRepanics() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	h := s.mw(func(echo.Context) error { panic(http.ErrAbortHandler) })

	s.PanicsWithValue(http.ErrAbortHandler, func() { _ = h(c) })
}
