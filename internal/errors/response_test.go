package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorResponseTestSuite struct {
	suite.Suite
}

func TestErrorResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorResponseTestSuite))
}

func (s *ErrorResponseTestSuite) TestNewErrorResponse() {
	response := NewErrorResponse(TransactionNotFound, "trace-123")

	s.Equal("TRANSACTION_001", response.Error.Code)
	s.Equal("Transaction not found", response.Error.Message)
	s.Equal("trace-123", response.Error.TraceID)
	s.Equal(http.StatusNotFound, response.GetHTTPStatus())
}

func (s *ErrorResponseTestSuite) TestFunctionalOptions() {
	response := NewErrorResponse(RuleInvalidPattern, "trace-456",
		WithMessage("pattern could not be compiled"),
		WithDetails("pattern: [unclosed"))

	s.Equal("pattern could not be compiled", response.Error.Message)
	s.Equal([]string{"pattern: [unclosed"}, response.Error.Details)
	s.Equal(http.StatusBadRequest, response.GetHTTPStatus())
}

func (s *ErrorResponseTestSuite) TestStatusMapping() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{ImportAlreadyRunning, http.StatusConflict},
		{ImportSourceUnreadable, http.StatusUnprocessableEntity},
		{CategoryNotFound, http.StatusNotFound},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{SystemDatabaseError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN_999"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, GetHTTPStatus(tc.code))
		})
	}
}

func (s *ErrorResponseTestSuite) TestNewValidationError() {
	response := NewValidationError(map[string]string{"amount": "must be a decimal"}, "trace-789")

	s.Equal(string(ValidationGeneral), response.Error.Code)
	s.Len(response.Error.Details, 1)
	s.Contains(response.Error.Details[0], "amount")
	s.True(response.IsClientError())
	s.False(response.IsServerError())
}

func (s *ErrorResponseTestSuite) TestToJSON() {
	response := NewErrorResponse(ImportCancelled, "trace-abc")

	raw, err := response.ToJSON()
	s.Require().NoError(err)

	var decoded ErrorResponse
	s.Require().NoError(json.Unmarshal(raw, &decoded))
	s.Equal("IMPORT_004", decoded.Error.Code)
	s.Equal("trace-abc", decoded.Error.TraceID)
}
