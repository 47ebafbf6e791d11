package certificateValidator

import (
	"strings"

	"certvault/files"
	"certvault/middleware"
	"certvault/models"
	"certvault/services"
	"certvault/validators"

	"github.com/gofiber/fiber/v2"
)

// CreateCertificate validates the multipart submission form.
func CreateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           string `form:"title" validate:"required,max=200"`
			InstitutionName string `form:"institution_name" validate:"required,max=200"`
			ProgramName     string `form:"program_name" validate:"required,max=200"`
			IssueDate       string `form:"issue_date" validate:"required,datetime=2006-01-02"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.InstitutionName = strings.TrimSpace(reqData.InstitutionName)
		reqData.ProgramName = strings.TrimSpace(reqData.ProgramName)
		reqData.IssueDate = strings.TrimSpace(reqData.IssueDate)

		errors := validators.Struct(reqData)

		var file *files.File
		fh, err := c.FormFile("certificate_file")
		if err != nil {
			errors["certificate_file"] = "certificate_file is required!"
		} else if file, err = files.ReadUpload(fh); err != nil {
			errors["certificate_file"] = "Could not read certificate file!"
		} else if !file.IsPDF() && !file.IsImage() {
			errors["certificate_file"] = "Certificate must be a PDF or an image!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCertificate", &services.SubmitForm{
			CertificateFields: models.CertificateFields{
				Title:           reqData.Title,
				InstitutionName: reqData.InstitutionName,
				ProgramName:     reqData.ProgramName,
				IssueDate:       reqData.IssueDate,
			},
			File: file,
		})
		return c.Next()
	}
}
