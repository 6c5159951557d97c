package handlers

import (
	"github.com/dngun/backend/internal/http/dto"
	"github.com/dngun/backend/internal/middleware"
	"github.com/dngun/backend/internal/models"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	escrowService      *services.EscrowService
	negotiationService *services.NegotiationService
	log                *zap.Logger
}

func NewTransactionHandler(escrowService *services.EscrowService, negotiationService *services.NegotiationService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{escrowService: escrowService, negotiationService: negotiationService, log: log}
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid domain_id"})
	}

	buyerID := middleware.GetUserID(c)
	tx, err := h.escrowService.Open(c.Context(), domainID, buyerID, req.PaymentMethod)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: tx})
}

func (h *TransactionHandler) MyTransactions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	txs, err := h.escrowService.ListForUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: txs})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid transaction id"})
	}

	userID := middleware.GetUserID(c)
	tx, err := h.escrowService.Get(c.Context(), id, userID)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: tx})
}

func (h *TransactionHandler) CompleteTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid transaction id"})
	}

	var req dto.CompleteTransactionRequest
	_ = c.BodyParser(&req)

	actorID := middleware.GetUserID(c)
	tx, err := h.escrowService.Complete(c.Context(), id, actorID, req.Code, req.BackupCode)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: tx})
}

func (h *TransactionHandler) UpdateTransactionStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid transaction id"})
	}

	var req dto.UpdateTransactionStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "status is required"})
	}

	actorID := middleware.GetUserID(c)
	tx, err := h.escrowService.UpdateStatus(c.Context(), id, actorID, req.Status, req.Note, req.Code, req.BackupCode)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: tx})
}

func (h *TransactionHandler) ListMessages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid transaction id"})
	}

	// Participant check rides on the transaction lookup.
	userID := middleware.GetUserID(c)
	if _, err := h.escrowService.Get(c.Context(), id, userID); err != nil {
		return respondServiceError(c, h.log, err)
	}

	msgs, err := h.negotiationService.List(c.Context(), id)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: msgs})
}

func (h *TransactionHandler) AppendMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid transaction id"})
	}

	var req dto.AppendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "body is required"})
	}

	userID := middleware.GetUserID(c)
	if _, err := h.escrowService.Get(c.Context(), id, userID); err != nil {
		return respondServiceError(c, h.log, err)
	}

	role := req.Role
	if role == "" {
		role = models.SenderRoleUser
	}
	// Clients never write as the orchestrator.
	if role == models.SenderRoleSystem {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "system messages are reserved"})
	}

	msg, err := h.negotiationService.Append(c.Context(), id, role, &userID, req.Body)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: msg})
}
