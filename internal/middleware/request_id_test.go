package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

// serve runs one request through RequestID and returns the echo context, the
// recorder and the trace ID seen on the request context inside the handler
func (s *RequestIDTestSuite) serve(inboundTraceID string) (echo.Context, *httptest.ResponseRecorder, string) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inboundTraceID != "" {
		req.Header.Set(TraceIDHeader, inboundTraceID)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	var fromContext string
	handler := RequestID()(func(c echo.Context) error {
		fromContext = TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	s.Require().NoError(handler(c))

	return c, rec, fromContext
}

func (s *RequestIDTestSuite) TestGeneratesTraceID() {
	c, rec, fromContext := s.serve("")

	traceID := GetTraceID(c)
	_, err := uuid.Parse(traceID)
	s.NoError(err)
	s.Equal(traceID, rec.Header().Get(TraceIDHeader))
	s.Equal(traceID, fromContext)
}

func (s *RequestIDTestSuite) TestKeepsClientTraceID() {
	supplied := uuid.New().String()

	c, rec, fromContext := s.serve(supplied)

	s.Equal(supplied, GetTraceID(c))
	s.Equal(supplied, rec.Header().Get(TraceIDHeader))
	s.Equal(supplied, fromContext)
}

func (s *RequestIDTestSuite) TestReplacesMalformedTraceID() {
	c, _, _ := s.serve("not-a-uuid")

	traceID := GetTraceID(c)
	s.NotEqual("not-a-uuid", traceID)
	_, err := uuid.Parse(traceID)
	s.NoError(err)
}
