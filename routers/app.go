// Package routers assembles the fiber application.
package routers

import (
	authControllers "certvault/controllers/auth"
	certificateController "certvault/controllers/certificate"
	feedbackController "certvault/controllers/feedback"
	userProfileController "certvault/controllers/userControllers"
	"certvault/files"
	"certvault/middleware"
	authRoutes "certvault/routers/authRoutes"
	"certvault/routers/certificateRoutes"
	"certvault/routers/feedbackRoutes"
	userProfileRoutes "certvault/routers/userRoutes"
	"certvault/routers/verificationRoutes"
	"certvault/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type Handlers struct {
	Sessions       *session.Manager
	Auth           *authControllers.AuthController
	Profile        *userProfileController.ProfileController
	Certificates   *certificateController.CertificateController
	Feedback       *feedbackController.FeedbackController
	CallbackSecret string
	UploadDir      string
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

func NewApp(h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "certvault",
		BodyLimit: files.MaxUploadSize + 1<<20,
	})

	app.Use(cors.New(cors.Config{
		// The feedback endpoint answers its own preflight
		Next:         func(c *fiber.Ctx) bool { return c.Path() == "/api/feedback" },
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	if h.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	if h.UploadDir != "" {
		app.Static("/uploads", h.UploadDir)
	}

	jwt := middleware.JWTMiddleware(h.Sessions)

	authRoutes.SetupAuthRoutes(app, h.Auth, jwt)
	userProfileRoutes.SetupUserRoutes(app, h.Profile, jwt)
	certificateRoutes.SetupCertificateRoutes(app, h.Certificates, jwt)
	verificationRoutes.SetupVerificationRoutes(app, h.Certificates, h.CallbackSecret)
	feedbackRoutes.SetupFeedbackRoutes(app, h.Feedback)

	return app
}
