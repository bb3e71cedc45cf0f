package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// ProjectHandler serves project CRUD and assignment endpoints
type ProjectHandler struct {
	projectSvc *services.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectSvc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	filter := &models.ProjectFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: c.QueryInt("assigned_to"),
		Search:     c.Query("search"),
	}

	projects, err := h.projectSvc.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	project, err := h.projectSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req models.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	project, err := h.projectSvc.Create(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// Update handles PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	var req models.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	project, err := h.projectSvc.Update(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// Delete handles DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	if err := h.projectSvc.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

// GetAssignments handles GET /api/projects/:id/assignments
func (h *ProjectHandler) GetAssignments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	assignments, err := h.projectSvc.GetAssignments(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}

// SetAssignments handles PUT /api/projects/:id/assignments
func (h *ProjectHandler) SetAssignments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	var req models.SetAssignmentsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	assignments, err := h.projectSvc.SetAssignments(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"assignments": assignments})
}
