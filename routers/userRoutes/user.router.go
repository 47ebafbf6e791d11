package userProfileRoutes

import (
	userProfileController "certvault/controllers/userControllers"
	userProfileValidator "certvault/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, profile *userProfileController.ProfileController, jwt fiber.Handler) {
	userGroup := app.Group("/user", jwt)

	userGroup.Get("/profile", profile.GetProfile)
	userGroup.Put("/profile", userProfileValidator.UpdateProfile(), profile.UpdateProfile)

	app.Get("/dashboard", jwt, profile.GetDashboard)
	app.Get("/notifications", jwt, profile.Notifications)
}
