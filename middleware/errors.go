package middleware

import (
	"errors"

	"certvault/files"
	"certvault/services"
	"certvault/session"
	"certvault/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse maps domain errors to HTTP statuses. Unknown errors are logged
// and answered with fallback.
func ErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	var fieldErrs services.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return ValidationErrorResponse(c, fieldErrs)
	case errors.Is(err, store.ErrNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, "Record not found!", nil)
	case errors.Is(err, services.ErrForbidden):
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this certificate!", nil)
	case errors.Is(err, store.ErrAlreadyMinted):
		return JsonResponse(c, fiber.StatusConflict, false, "Certificate is already minted!", nil)
	case errors.Is(err, store.ErrInvalidTransition):
		return JsonResponse(c, fiber.StatusConflict, false, "Invalid verification status transition!", nil)
	case errors.Is(err, services.ErrAlreadyVerified):
		return JsonResponse(c, fiber.StatusConflict, false, "Certificate is already verified!", nil)
	case errors.Is(err, store.ErrDuplicateEntry):
		return JsonResponse(c, fiber.StatusConflict, false, "Wallet address is already in use!", nil)
	case errors.Is(err, store.ErrNotVerified):
		return ValidationErrorResponse(c, map[string]string{"verification_status": "Only verified certificates can be minted"})
	case errors.Is(err, session.ErrInvalidAddress):
		return ValidationErrorResponse(c, map[string]string{"wallet_address": "Invalid Solana wallet address"})
	case errors.Is(err, files.ErrUnsupportedType):
		return ValidationErrorResponse(c, map[string]string{"file": "Unsupported file type"})
	case errors.Is(err, files.ErrTooLarge):
		return JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "File is too large!", nil)
	}

	zap.L().Error(fallback,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
}
