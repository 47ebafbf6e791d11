package certificateController

import (
	"certvault/middleware"
	"certvault/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CertificateController struct {
	Certs *services.CertificateService
}

func (cc *CertificateController) List(c *fiber.Ctx) error {
	certs, err := cc.Certs.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully.", certs)
}

// Create runs the submission workflow for a validated multipart form.
func (cc *CertificateController) Create(c *fiber.Ctx) error {
	form := c.Locals("validatedCertificate").(*services.SubmitForm)

	cert, err := cc.Certs.Submit(c.UserContext(), middleware.UserID(c), *form)
	if err != nil {
		if cert != nil {
			zap.L().Warn("Certificate created without verification",
				zap.String("certificate_id", cert.ID), zap.Error(err))
			return middleware.JsonResponse(c, fiber.StatusCreated, true,
				"Certificate uploaded, but verification could not be started. Try again from the certificate page.", cert)
		}
		return middleware.ErrorResponse(c, err, "Failed to upload certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate uploaded successfully.", cert)
}

func (cc *CertificateController) Get(c *fiber.Ctx) error {
	cert, err := cc.Certs.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully.", cert)
}

func (cc *CertificateController) Status(c *fiber.Ctx) error {
	status, err := cc.Certs.Status(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to check verification status!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification status fetched successfully.",
		fiber.Map{"verification_status": status})
}

func (cc *CertificateController) Verify(c *fiber.Ctx) error {
	cert, err := cc.Certs.Verify(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to start verification!")
	}
	return middleware.JsonResponse(c, fiber.StatusAccepted, true, "Verification started.", cert)
}

// Unwatch stops background polling once the client leaves the certificate view.
func (cc *CertificateController) Unwatch(c *fiber.Ctx) error {
	stopped, err := cc.Certs.Unwatch(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to stop watching certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stopped watching certificate.", fiber.Map{"stopped": stopped})
}

func (cc *CertificateController) Mint(c *fiber.Ctx) error {
	cert, err := cc.Certs.Mint(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to mint certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate minted successfully.", fiber.Map{
		"mint_address": cert.NFTMintAddress,
		"arweave_url":  cert.ArweaveURL,
		"certificate":  cert,
	})
}

func (cc *CertificateController) Logs(c *fiber.Ctx) error {
	logs, err := cc.Certs.Logs(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch verification logs!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification logs fetched successfully.", logs)
}

func (cc *CertificateController) Share(c *fiber.Ctx) error {
	link, err := cc.Certs.Share(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create share link!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Share link created successfully.", link)
}

// PublicVerify shows a certificate and its verification history without login.
func (cc *CertificateController) PublicVerify(c *fiber.Ctx) error {
	record, err := cc.Certs.Public(c.UserContext(), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully.", record)
}

func (cc *CertificateController) PublicView(c *fiber.Ctx) error {
	cert, err := cc.Certs.View(c.UserContext(), c.Params("userId"), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully.", cert)
}

// VerificationCallback applies a status report from the verification worker.
func (cc *CertificateController) VerificationCallback(c *fiber.Ctx) error {
	result := c.Locals("validatedResult").(*services.VerificationResult)

	cert, err := cc.Certs.ApplyResult(c.UserContext(), *result)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to apply verification result!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification result applied.", cert)
}
