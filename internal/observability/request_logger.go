package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger emits one structured line per request and feeds the
// request counters. It sits outside the error handler so the logged
// status is the one the client actually received.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Info("request completed",
			zap.String("request_id", RequestIDFromContext(c.UserContext())),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		metrics.RecordRequest(c.Path(), c.Method(), status, duration)

		return err
	}
}
