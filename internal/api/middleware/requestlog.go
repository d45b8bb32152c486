package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	webhookIDHeader = "X-Shopify-Webhook-Id"

	// RequestIDKey is the echo context key holding the request ID.
	RequestIDKey = "request_id"
)

// probePaths log only their first success. Failures are always logged at
// warn.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// The request ID is taken from X-Request-ID, then from the Shopify webhook
// id, and generated otherwise. It is propagated through the response header
// and echo context.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var seen sync.Map // probe path -> struct{} once a success was logged

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			webhookID := req.Header.Get(webhookIDHeader)
			reqID := req.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = webhookID
			}
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set(RequestIDKey, reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			status := c.Response().Status
			path := req.URL.Path

			_, probe := probePaths[path]
			if probe && status < http.StatusBadRequest {
				if _, loaded := seen.LoadOrStore(path, struct{}{}); loaded {
					return err
				}
			}

			attrs := []any{
				"method", req.Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if webhookID != "" && webhookID != reqID {
				attrs = append(attrs, "webhook_id", webhookID)
			}

			switch {
			case status >= http.StatusInternalServerError && !probe:
				log.Error("request", attrs...)
			case status >= http.StatusBadRequest:
				log.Warn("request", attrs...)
			default:
				log.Info("request", attrs...)
			}

			return err
		}
	}
}

// RequestID returns the request ID assigned by RequestLog, or "".
func RequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}
