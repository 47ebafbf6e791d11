package feedbackController

import (
	"errors"
	"sort"
	"strings"

	"certvault/feedback"
	"certvault/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FeedbackController struct {
	Relay *feedback.Relay
}

// Handle serves every method on the feedback endpoint. Only POST relays;
// OPTIONS answers the browser preflight.
func (f *FeedbackController) Handle(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodOptions:
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, fiber.MethodPost)
		c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)
		return c.SendStatus(fiber.StatusNoContent)
	case fiber.MethodPost:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).SendString("Method not allowed")
	}

	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")

	var payload models.FeedbackPayload
	if err := c.BodyParser(&payload); err != nil {
		return failed(c, err)
	}

	if err := f.Relay.Send(c.UserContext(), payload); err != nil {
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			msgs := make([]string, 0, len(verr.Fields))
			for _, msg := range verr.Fields {
				msgs = append(msgs, msg)
			}
			sort.Strings(msgs)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": strings.Join(msgs, "; ")})
		}

		return failed(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// failed answers every non-validation failure, unreadable bodies included.
func failed(c *fiber.Ctx, err error) error {
	zap.L().Error("Error processing feedback", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Failed to process feedback",
	})
}
