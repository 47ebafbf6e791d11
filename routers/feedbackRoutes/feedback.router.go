package feedbackRoutes

import (
	feedbackController "certvault/controllers/feedback"

	"github.com/gofiber/fiber/v2"
)

func SetupFeedbackRoutes(app *fiber.App, feedback *feedbackController.FeedbackController) {
	app.All("/api/feedback", feedback.Handle)
}
