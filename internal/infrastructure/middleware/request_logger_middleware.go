package middleware

import (
	"context"
	"time"

	"telecare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLoggerMiddleware assigns each request an id, echoes it in the
// X-Request-ID header, and logs the request with its context fields once the
// handler chain finishes. Runs after auth middleware so the user id, when
// present, lands in the log line.
func RequestLoggerMiddleware(base *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		ctx = c.Request.Context()
		if userID := c.GetString("user_id"); userID != "" {
			ctx = context.WithValue(ctx, logger.UserIDKey, userID)
		}

		base.LogRequest(ctx, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
