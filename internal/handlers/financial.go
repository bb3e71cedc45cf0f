package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// FinancialHandler serves cost rate and ROI endpoints
type FinancialHandler struct {
	financialSvc *services.FinancialService
}

// NewFinancialHandler creates a new financial handler
func NewFinancialHandler(financialSvc *services.FinancialService) *FinancialHandler {
	return &FinancialHandler{financialSvc: financialSvc}
}

// CreateCostRate handles POST /api/financial/cost-rates
func (h *FinancialHandler) CreateCostRate(c *fiber.Ctx) error {
	var req models.CreateCostRateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	rate, err := h.financialSvc.CreateCostRate(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rate)
}

// ListCostRates handles GET /api/financial/users/:id/cost-rates
func (h *FinancialHandler) ListCostRates(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid user id")
	}

	rates, err := h.financialSvc.ListRates(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cost_rates": rates})
}

// ComputeROI handles GET /api/financial/projects/:id/roi and always runs the
// full computation; the snapshot is a side effect.
func (h *FinancialHandler) ComputeROI(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	result, err := h.financialSvc.ComputeProjectROI(c.Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetSnapshot handles GET /api/financial/projects/:id/snapshot
func (h *FinancialHandler) GetSnapshot(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.InvalidInput("Invalid project id")
	}

	snapshot, err := h.financialSvc.GetSnapshot(c.Context(), projectID)
	if err != nil {
		return err
	}
	return c.JSON(snapshot)
}

// ListSnapshots handles GET /api/financial/snapshots
func (h *FinancialHandler) ListSnapshots(c *fiber.Ctx) error {
	snapshots, err := h.financialSvc.ListSnapshots(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"snapshots": snapshots})
}
