package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytgrab/internal/utils"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	RequestIDHeader     = "X-Request-ID"
)

// CorrelationIDMiddleware tags each request with correlation and request IDs and logs its outcome.
// An incoming X-Correlation-ID is kept so a caller can follow one download across services.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}
		requestID := utils.GenerateRequestID()

		c.Set(string(utils.CorrelationIDKey), correlationID)
		c.Set(string(utils.RequestIDKey), requestID)
		c.Header(CorrelationIDHeader, correlationID)
		c.Header(RequestIDHeader, requestID)

		ctx := utils.WithRequestID(utils.WithCorrelationID(c.Request.Context(), correlationID), requestID)
		c.Request = c.Request.WithContext(ctx)

		utils.LogDebug(ctx, "Incoming request", utils.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		})

		completed := false
		defer func() {
			logCompletion(ctx, c, start, !completed)
		}()

		c.Next()
		completed = true
	}
}

// logCompletion runs deferred so that a handler unwinding with http.ErrAbortHandler is still logged.
func logCompletion(ctx context.Context, c *gin.Context, start time.Time, aborted bool) {
	fields := utils.Fields{
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"status":        c.Writer.Status(),
		"bytes_written": c.Writer.Size(),
		"duration_ms":   time.Since(start).Milliseconds(),
	}
	if ctx.Err() != nil {
		fields["client_gone"] = true
	}

	switch status := c.Writer.Status(); {
	case aborted:
		fields["aborted"] = true
		utils.LogWarn(ctx, "Request failed", fields)
	case status >= http.StatusInternalServerError:
		utils.LogWarn(ctx, "Request failed", fields)
	case status >= http.StatusBadRequest:
		utils.LogInfo(ctx, "Request rejected", fields)
	default:
		utils.LogInfo(ctx, "Request completed", fields)
	}
}
