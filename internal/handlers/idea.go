package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// IdeaHandler serves idea and voting endpoints
type IdeaHandler struct {
	ideaSvc *services.IdeaService
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(ideaSvc *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaSvc: ideaSvc}
}

// List handles GET /api/ideas
func (h *IdeaHandler) List(c *fiber.Ctx) error {
	ideas, err := h.ideaSvc.List(c.Context(), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ideas": ideas})
}

// Get handles GET /api/ideas/:id
func (h *IdeaHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid idea id")
	}

	idea, err := h.ideaSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(idea)
}

// Create handles POST /api/ideas
func (h *IdeaHandler) Create(c *fiber.Ctx) error {
	var req models.CreateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	idea, err := h.ideaSvc.Create(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(idea)
}

// Update handles PUT /api/ideas/:id
func (h *IdeaHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid idea id")
	}

	var req models.UpdateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	idea, err := h.ideaSvc.Update(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(idea)
}

// Vote handles POST /api/ideas/:id/vote
func (h *IdeaHandler) Vote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid idea id")
	}

	idea, err := h.ideaSvc.Vote(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(idea)
}

// Unvote handles DELETE /api/ideas/:id/vote
func (h *IdeaHandler) Unvote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid idea id")
	}

	idea, err := h.ideaSvc.Unvote(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(idea)
}

// Delete handles DELETE /api/ideas/:id
func (h *IdeaHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid idea id")
	}

	if err := h.ideaSvc.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Idea deleted"})
}
