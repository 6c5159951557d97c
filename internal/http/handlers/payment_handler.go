package handlers

import (
	"github.com/dngun/backend/internal/config"
	"github.com/dngun/backend/internal/http/dto"
	"github.com/dngun/backend/internal/middleware"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	cfg            *config.Config
	log            *zap.Logger
}

func NewPaymentHandler(paymentService *services.PaymentService, cfg *config.Config, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, cfg: cfg, log: log}
}

// CreateCheckout opens a gateway session. Anonymous buyers are allowed, so
// the route sits behind the optional auth middleware.
func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid domain_id"})
	}

	buyerID := middleware.GetOptionalUserID(c)
	result, err := h.paymentService.OpenCheckout(c.Context(), domainID, buyerID, req.Currency, h.cfg.FrontendOriginURL, req.Metadata)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: result})
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	sessionRef := c.Params("sessionRef")
	if sessionRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "session ref is required"})
	}

	intent, err := h.paymentService.RefreshStatus(c.Context(), sessionRef)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: intent})
}

func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	buyerID := middleware.GetUserID(c)

	intents, err := h.paymentService.ListForBuyer(c.Context(), buyerID)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: intents})
}

func (h *PaymentHandler) ReleaseEscrow(c *fiber.Ctx) error {
	intentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid payment id"})
	}

	var req dto.ReleaseEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actorID := middleware.GetUserID(c)
	intent, err := h.paymentService.ReleaseFromEscrow(c.Context(), intentID, actorID, req.TransferConfirmed, req.Code, req.BackupCode)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: intent})
}
