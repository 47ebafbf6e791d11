package authValidator

import (
	"strings"

	"certvault/middleware"
	"certvault/session"
	"certvault/validators"

	"github.com/gofiber/fiber/v2"
)

// WalletLogin validator middleware
func WalletLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			WalletAddress string `json:"wallet_address" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.WalletAddress = strings.TrimSpace(reqData.WalletAddress)

		errors := validators.Struct(reqData)
		if _, ok := errors["wallet_address"]; !ok {
			if _, err := session.ValidateAddress(reqData.WalletAddress); err != nil {
				errors["wallet_address"] = "Invalid Solana wallet address!"
			}
		}

		// Respond with errors if any exist
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWallet", reqData.WalletAddress)
		return c.Next()
	}
}
