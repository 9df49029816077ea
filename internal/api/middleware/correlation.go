package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type key int

const CorrelationKey key = 0

const CorrelationHeader = "X-Correlation-ID"

// CorrelationID tags every request with an id taken from X-Correlation-ID or
// freshly generated, echoes it in the response and logs the request around
// the handler chain.
func CorrelationID(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Request = c.Request.WithContext(WithCorrelationID(c.Request.Context(), id))
		c.Header(CorrelationHeader, id)

		path := c.Request.URL.Path
		logger.Debug("request received",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("correlation_id", id))
		start := time.Now()

		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("correlation_id", id))
	}
}

func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationKey).(string); ok {
		return id
	}
	return "unknown"
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}
