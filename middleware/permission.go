package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// CheckCallbackSecret admits only callers presenting the shared worker secret
// in the X-Callback-Secret header.
func CheckCallbackSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get("X-Callback-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  false,
				"message": "You do not have permission to access this resource!",
				"data":    nil,
			})
		}
		return c.Next()
	}
}
