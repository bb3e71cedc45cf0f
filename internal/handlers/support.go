package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// SupportHandler serves support ticket endpoints
type SupportHandler struct {
	supportSvc *services.SupportService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(supportSvc *services.SupportService) *SupportHandler {
	return &SupportHandler{supportSvc: supportSvc}
}

// List handles GET /api/support/tickets
func (h *SupportHandler) List(c *fiber.Ctx) error {
	tickets, err := h.supportSvc.List(c.Context(), c.Query("status"), c.Query("priority"),
		c.QueryInt("assigned_to"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": tickets})
}

// Get handles GET /api/support/tickets/:id
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid ticket id")
	}

	ticket, err := h.supportSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// Create handles POST /api/support/tickets
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	ticket, err := h.supportSvc.Create(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// Update handles PUT /api/support/tickets/:id
func (h *SupportHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid ticket id")
	}

	var req models.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	ticket, err := h.supportSvc.Update(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// ListResponses handles GET /api/support/tickets/:id/responses
func (h *SupportHandler) ListResponses(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid ticket id")
	}

	responses, err := h.supportSvc.ListResponses(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"responses": responses})
}

// AddResponse handles POST /api/support/tickets/:id/responses
func (h *SupportHandler) AddResponse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid ticket id")
	}

	var req models.AddResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	response, err := h.supportSvc.AddResponse(c.Context(), id, middleware.UserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}
