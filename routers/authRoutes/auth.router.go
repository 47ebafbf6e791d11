package authRoutes

import (
	authControllers "certvault/controllers/auth"
	authValidators "certvault/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth *authControllers.AuthController, jwt fiber.Handler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/wallet/login", authValidators.WalletLogin(), auth.WalletLogin)
	authGroup.Post("/wallet/connect", auth.WalletConnect)
	authGroup.Post("/logout", jwt, auth.Logout)
}
