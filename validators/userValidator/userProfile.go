package userValidator

import (
	"strings"

	"certvault/files"
	"certvault/middleware"
	"certvault/services"
	"certvault/validators"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile validates the multipart profile form. Every field is optional.
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			FullName string `json:"full_name" form:"full_name" validate:"max=100"`
			Email    string `json:"email" form:"email" validate:"omitempty,email"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.FullName = strings.TrimSpace(reqData.FullName)
		reqData.Email = strings.TrimSpace(reqData.Email)

		errors := validators.Struct(reqData)

		form := services.ProfileForm{FullName: reqData.FullName, Email: reqData.Email}
		if fh, err := c.FormFile("profile_image"); err == nil {
			image, err := files.ReadUpload(fh)
			if err != nil {
				errors["profile_image"] = "Could not read profile image!"
			} else if !image.IsImage() {
				errors["profile_image"] = "Profile image must be an image!"
			} else {
				form.Image = image
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProfile", &form)
		return c.Next()
	}
}
