package authController

import (
	"errors"

	"certvault/middleware"
	"certvault/session"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Sessions *session.Manager
	Wallet   *session.WalletSimulator
}

// WalletLogin signs in with a wallet address, creating the profile on first use.
func (a *AuthController) WalletLogin(c *fiber.Ctx) error {
	address, _ := c.Locals("validatedWallet").(string)

	s, err := a.Sessions.Login(c.UserContext(), address)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to login!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet connected successfully.", s)
}

// WalletConnect connects the mock wallet and signs in with its address.
func (a *AuthController) WalletConnect(c *fiber.Ctx) error {
	s, err := a.Wallet.Connect(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to connect wallet!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet connected successfully.", s)
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	if err := a.Sessions.Logout(token); err != nil {
		if errors.Is(err, session.ErrRevoked) || errors.Is(err, session.ErrInvalidToken) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to logout!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet disconnected successfully.", nil)
}
