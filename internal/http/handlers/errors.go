package handlers

import (
	"errors"

	"github.com/dngun/backend/internal/http/dto"
	"github.com/dngun/backend/internal/middleware"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondServiceError maps the service error taxonomy onto HTTP status
// codes. Anything unrecognized is a 500 and gets logged with the request id.
func respondServiceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	var code int
	switch {
	case errors.Is(err, services.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		code = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		code = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrTwoFactorRequired),
		errors.Is(err, services.ErrInvalidCode):
		code = fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrDomainUnavailable),
		errors.Is(err, services.ErrAlreadyEnabled):
		code = fiber.StatusConflict
	case errors.Is(err, services.ErrSelfPurchase):
		code = fiber.StatusBadRequest
	case errors.Is(err, services.ErrGatewayUnavailable):
		code = fiber.StatusBadGateway
	default:
		log.Error("unhandled service error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
}
