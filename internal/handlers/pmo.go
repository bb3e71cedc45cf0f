package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// PMOHandler serves milestone, metrics and dashboard endpoints
type PMOHandler struct {
	pmoSvc   *services.PMOService
	excelSvc *services.ExcelService
}

// NewPMOHandler creates a new PMO handler
func NewPMOHandler(pmoSvc *services.PMOService, excelSvc *services.ExcelService) *PMOHandler {
	return &PMOHandler{pmoSvc: pmoSvc, excelSvc: excelSvc}
}

// ListMilestones handles GET /api/pmo/projects/:id/milestones
func (h *PMOHandler) ListMilestones(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	milestones, err := h.pmoSvc.ListMilestones(c.Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"milestones": milestones})
}

// GetMilestone handles GET /api/pmo/milestones/:id
func (h *PMOHandler) GetMilestone(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid milestone id")
	}

	milestone, err := h.pmoSvc.GetMilestone(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(milestone)
}

// CreateMilestone handles POST /api/pmo/milestones
func (h *PMOHandler) CreateMilestone(c *fiber.Ctx) error {
	var req models.MilestoneInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	milestone, err := h.pmoSvc.CreateMilestone(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(milestone)
}

// UpdateMilestone handles PUT /api/pmo/milestones/:id
func (h *PMOHandler) UpdateMilestone(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid milestone id")
	}

	var req models.UpdateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	milestone, err := h.pmoSvc.UpdateMilestone(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(milestone)
}

// DeleteMilestone handles DELETE /api/pmo/milestones/:id
func (h *PMOHandler) DeleteMilestone(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid milestone id")
	}

	if err := h.pmoSvc.DeleteMilestone(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Milestone deleted"})
}

// BatchCreateMilestones handles POST /api/pmo/milestones/batch
func (h *PMOHandler) BatchCreateMilestones(c *fiber.Ctx) error {
	var req models.BatchCreateMilestonesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	result, err := h.pmoSvc.BatchCreateMilestones(c.Context(), &req, middleware.UserID(c))
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if len(result.Errors) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// BatchDeleteMilestones handles DELETE /api/pmo/milestones/batch
func (h *PMOHandler) BatchDeleteMilestones(c *fiber.Ctx) error {
	var req models.BatchDeleteMilestonesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	result, err := h.pmoSvc.BatchDeleteMilestones(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ImportMilestones handles POST /api/pmo/projects/:id/milestones/import with
// an xlsx multipart upload.
func (h *PMOHandler) ImportMilestones(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.Validation("An xlsx file upload is required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.InvalidInput("Failed to read the uploaded file")
	}
	defer f.Close()

	result, err := h.excelSvc.ImportMilestones(c.Context(), f, projectID, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetMetrics handles GET /api/pmo/projects/:id/metrics
func (h *PMOHandler) GetMetrics(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	metrics, err := h.pmoSvc.GetMetricsByProject(c.Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(metrics)
}

// UpsertMetrics handles PUT /api/pmo/projects/:id/metrics
func (h *PMOHandler) UpsertMetrics(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	var req models.UpsertPMOMetricsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	metrics, err := h.pmoSvc.UpsertMetrics(c.Context(), projectID, &req)
	if err != nil {
		return err
	}
	return c.JSON(metrics)
}

// Dashboard handles GET /api/pmo/dashboard
func (h *PMOHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.pmoSvc.DashboardSummary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"projects": summary})
}
