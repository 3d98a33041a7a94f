package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger records one line per completed request. Requests that bubble
// an error up through the handler chain are logged at error level with the
// error attached; everything else is informational.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
			"ip", c.IP(),
		}
		if err != nil {
			logger.Errorw("request failed", append(fields, "error", err)...)
			return err
		}
		logger.Infow("request completed", fields...)
		return nil
	}
}
