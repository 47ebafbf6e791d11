package verificationValidator

import (
	"certvault/middleware"
	"certvault/services"
	"certvault/validators"

	"github.com/gofiber/fiber/v2"
)

// Callback validates a worker status report.
func Callback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.VerificationResult)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedResult", reqData)
		return c.Next()
	}
}
