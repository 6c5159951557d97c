package handlers

import (
	"github.com/dngun/backend/internal/http/dto"
	"github.com/dngun/backend/internal/middleware"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TwoFactorHandler struct {
	twoFactorService *services.TwoFactorService
	log              *zap.Logger
}

func NewTwoFactorHandler(twoFactorService *services.TwoFactorService, log *zap.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactorService: twoFactorService, log: log}
}

// Setup starts enrollment. The secret and backup codes appear in this
// response only; after enable, codes are held hashed.
func (h *TwoFactorHandler) Setup(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	setup, err := h.twoFactorService.BeginEnrollment(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.TwoFactorSetupResponse{
		Secret:          setup.Secret,
		ProvisioningURI: setup.ProvisioningURI,
		BackupCodes:     setup.BackupCodes,
	})
}

func (h *TwoFactorHandler) Enable(c *fiber.Ctx) error {
	var req dto.TwoFactorCodeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "code is required"})
	}

	userID := middleware.GetUserID(c)
	if err := h.twoFactorService.ConfirmEnrollment(c.Context(), userID, req.Code); err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TwoFactorHandler) Verify(c *fiber.Ctx) error {
	var req dto.TwoFactorCodeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "code is required"})
	}

	userID := middleware.GetUserID(c)
	ok, err := h.twoFactorService.VerifyCode(c.Context(), userID, req.Code)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "invalid code"})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TwoFactorHandler) Disable(c *fiber.Ctx) error {
	var req dto.TwoFactorDisableRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "password is required"})
	}

	userID := middleware.GetUserID(c)
	if err := h.twoFactorService.Disable(c.Context(), userID, req.Password, req.Code, req.BackupCode); err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TwoFactorHandler) RegenerateBackupCodes(c *fiber.Ctx) error {
	var req dto.TwoFactorCodeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "code is required"})
	}

	userID := middleware.GetUserID(c)
	codes, err := h.twoFactorService.RegenerateBackupCodes(c.Context(), userID, req.Code)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"backup_codes": codes}})
}

func (h *TwoFactorHandler) Status(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	enabled, remaining, err := h.twoFactorService.Status(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.TwoFactorStatusResponse{Enabled: enabled, BackupCodesRemaining: remaining})
}
