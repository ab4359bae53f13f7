package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/auth"
	"github.com/ltxvideo/api/pkg/response"
)

// Authenticate validates HMAC bearer tokens from the Authorization header
func Authenticate(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := auth.ValidateToken(parts[1], jwtSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// Optional returns h when enabled, otherwise a pass-through handler
func Optional(enabled bool, h fiber.Handler) fiber.Handler {
	if enabled {
		return h
	}
	return func(c *fiber.Ctx) error { return c.Next() }
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}
