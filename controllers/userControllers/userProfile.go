package userProfileController

import (
	"errors"

	"certvault/middleware"
	"certvault/services"
	"certvault/store"
	"certvault/verification"

	"github.com/gofiber/fiber/v2"
)

type ProfileController struct {
	Profiles  *services.ProfileService
	Dashboard *services.DashboardService
	Inbox     *verification.Inbox
}

func (p *ProfileController) GetProfile(c *fiber.Ctx) error {
	user, err := p.Profiles.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch profile!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func (p *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	form, _ := c.Locals("validatedProfile").(*services.ProfileForm)
	if form == nil {
		form = &services.ProfileForm{}
	}

	user, err := p.Profiles.Update(c.UserContext(), middleware.UserID(c), *form)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update profile!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func (p *ProfileController) GetDashboard(c *fiber.Ctx) error {
	summary, err := p.Dashboard.Summary(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch dashboard!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", summary)
}

// Notifications drains the caller's pending notifications.
func (p *ProfileController) Notifications(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully.", p.Inbox.Drain(middleware.UserID(c)))
}
