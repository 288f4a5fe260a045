package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID between client and server
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the echo context key holding the trace ID
	TraceIDContextKey = "trace_id"
)

type traceIDKey struct{}

// RequestID tags every request with a trace ID. A well-formed ID supplied by
// the client is kept so a trace can span callers; anything else is replaced
// with a fresh one. The ID is echoed in the response header and stored on
// both the echo context and the request context, so log lines emitted deep in
// the service layer can carry it too.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceIDHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), traceIDKey{}, traceID)))
			c.Response().Header().Set(TraceIDHeader, traceID)

			return next(c)
		}
	}
}

// GetTraceID returns the trace ID set by RequestID, or "" when absent
func GetTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

// TraceIDFromContext returns the trace ID carried on a request context, or ""
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}
