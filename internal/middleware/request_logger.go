package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured entry per request
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("requestid", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		entry := logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.IP(),
			"user_agent":  string(c.Request().Header.UserAgent()),
		})

		switch {
		case err != nil:
			entry.WithError(err).Error("request failed")
		case statusCode >= 500:
			entry.Error("request completed with server error")
		case statusCode >= 400:
			entry.Warn("request completed with client error")
		default:
			entry.Info("request completed")
		}

		// the app ErrorHandler still renders err
		return err
	}
}
