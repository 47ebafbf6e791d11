package certificateRoutes

import (
	certificateController "certvault/controllers/certificate"
	certificateValidator "certvault/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App, certs *certificateController.CertificateController, jwt fiber.Handler) {
	certGroup := app.Group("/certificates", jwt)

	certGroup.Get("/", certs.List)
	certGroup.Post("/", certificateValidator.CreateCertificate(), certs.Create)
	certGroup.Get("/:id", certs.Get)
	certGroup.Get("/:id/status", certs.Status)
	certGroup.Post("/:id/verify", certs.Verify)
	certGroup.Delete("/:id/watch", certs.Unwatch)
	certGroup.Post("/:id/mint", certs.Mint)
	certGroup.Get("/:id/logs", certs.Logs)
	certGroup.Get("/:id/share", certs.Share)

	// Public pages
	app.Get("/verify/:id", certs.PublicVerify)
	app.Get("/view/:userId/:id", certs.PublicView)
}
