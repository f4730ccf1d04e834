package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

// quietPaths are polled often and not worth a log line per hit.
var quietPaths = map[string]bool{
	"/health": true,
}

// Logger assigns a request ID and logs each request with its outcome.
// Static file hits are logged at debug level.
func Logger(base *slog.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		if quietPaths[path] {
			c.Next(ctx)
			return
		}

		logger := base.With(
			"request_id", requestID,
			"method", string(c.Method()),
			"path", path,
			"client_ip", c.ClientIP(),
		)
		static := strings.HasPrefix(path, "/uploads/") || strings.HasPrefix(path, "/outputs/")
		if !static {
			logger.Info("request started")
		}

		c.Next(ctx)

		latency := time.Since(start)
		statusCode := c.Response.StatusCode()
		logger = logger.With(
			"status", statusCode,
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case statusCode >= 500:
			logger.Error("request completed with server error")
		case statusCode >= 400:
			logger.Warn("request completed with client error")
		case static:
			logger.Debug("static file served")
		default:
			logger.Info("request completed successfully")
		}
	}
}

// GetRequestID returns the request ID assigned by Logger
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
