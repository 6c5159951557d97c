package handlers

import (
	"strconv"
	"strings"

	"github.com/dngun/backend/internal/http/dto"
	"github.com/dngun/backend/internal/middleware"
	"github.com/dngun/backend/internal/repositories"
	"github.com/dngun/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DomainHandler struct {
	domainService *services.DomainService
	log           *zap.Logger
}

func NewDomainHandler(domainService *services.DomainService, log *zap.Logger) *DomainHandler {
	return &DomainHandler{domainService: domainService, log: log}
}

func (h *DomainHandler) CreateDomain(c *fiber.Ctx) error {
	var req dto.CreateDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" || req.Extension == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name and extension are required"})
	}
	if req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "price must be positive"})
	}

	sellerID := middleware.GetUserID(c)
	d, err := h.domainService.CreateListing(c.Context(), sellerID, req.Name, req.Extension, req.Price, req.Category, req.Description)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: d})
}

func (h *DomainHandler) ListDomains(c *fiber.Ctx) error {
	filter := repositories.DomainFilter{
		Limit:  20,
		Offset: 0,
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMin = &f
		}
	}
	if v := c.Query("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMax = &f
		}
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}

	domains, err := h.domainService.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: domains})
}

func (h *DomainHandler) GetDomain(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid domain id"})
	}

	d, err := h.domainService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: d})
}

func (h *DomainHandler) GetDomainByName(c *fiber.Ctx) error {
	name := c.Params("name")
	ext := c.Params("ext")
	if name == "" || ext == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name and extension are required"})
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	d, err := h.domainService.GetByName(c.Context(), name, ext)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: d})
}

func (h *DomainHandler) SearchDomains(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "q is required"})
	}

	domains, err := h.domainService.Search(c.Context(), q)
	if err != nil {
		return respondServiceError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: domains})
}
