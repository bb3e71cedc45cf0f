package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// TimeEntryHandler serves time tracking endpoints
type TimeEntryHandler struct {
	timeSvc *services.TimeEntryService
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(timeSvc *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{timeSvc: timeSvc}
}

// List handles GET /api/time-entries. Non-privileged users only see their
// own entries.
func (h *TimeEntryHandler) List(c *fiber.Ctx) error {
	userID := c.QueryInt("user_id")
	role := middleware.UserRole(c)
	if role != models.RoleAdmin && role != models.RoleTeamLead {
		userID = middleware.UserID(c)
	}

	entries, err := h.timeSvc.List(c.Context(), userID, c.QueryInt("project_id"),
		c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"time_entries": entries})
}

// Create handles POST /api/time-entries
func (h *TimeEntryHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTimeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	entry, err := h.timeSvc.Create(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// Update handles PUT /api/time-entries/:id
func (h *TimeEntryHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid time entry id")
	}

	var req models.UpdateTimeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	entry, err := h.timeSvc.Update(c.Context(), id, middleware.UserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

// Delete handles DELETE /api/time-entries/:id
func (h *TimeEntryHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid time entry id")
	}

	if err := h.timeSvc.Delete(c.Context(), id, middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Time entry deleted"})
}

// ProjectSummary handles GET /api/projects/:id/time-summary
func (h *TimeEntryHandler) ProjectSummary(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	summary, err := h.timeSvc.ProjectSummary(c.Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
