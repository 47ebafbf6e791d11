package middleware

import (
	"errors"
	"strings"

	"certvault/session"

	"github.com/gofiber/fiber/v2"
)

// JWTMiddleware checks the bearer token against the session manager and
// stores the caller in c.Locals("userId"), c.Locals("wallet") and c.Locals("token").
func JWTMiddleware(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		// The token should be prefixed with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
		}
		tokenString := authHeader[len("Bearer "):]

		claims, err := sessions.Parse(tokenString)
		if err != nil {
			if errors.Is(err, session.ErrRevoked) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Session has been logged out", nil)
			}
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		c.Locals("userId", claims.UserID)
		c.Locals("wallet", claims.Wallet)
		c.Locals("token", tokenString)

		return c.Next()
	}
}

// UserID returns the caller set by JWTMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
