package verificationRoutes

import (
	certificateController "certvault/controllers/certificate"
	"certvault/middleware"
	verificationValidator "certvault/validators/verification"

	"github.com/gofiber/fiber/v2"
)

func SetupVerificationRoutes(app *fiber.App, certs *certificateController.CertificateController, callbackSecret string) {
	internal := app.Group("/internal/verification")

	internal.Post("/callback", middleware.CheckCallbackSecret(callbackSecret), verificationValidator.Callback(), certs.VerificationCallback)
}
