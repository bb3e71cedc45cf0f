package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// SettingsHandler serves the global settings endpoints
type SettingsHandler struct {
	settingsSvc *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsSvc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// List handles GET /api/settings
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	settings, err := h.settingsSvc.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// Update handles PUT /api/settings/:key. The numeric settings feeding the
// ROI computation are validated before the write.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	key := c.Params("key")

	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	req.Value = strings.TrimSpace(req.Value)
	if req.Value == "" {
		return apperrors.Validation("A value is required")
	}

	switch key {
	case models.SettingKeyMonthlyHours, models.SettingKeyUFRate, models.SettingKeyDefaultMonthlyCost:
		v, err := strconv.ParseFloat(req.Value, 64)
		if err != nil || v <= 0 {
			return apperrors.Validation("The value must be a positive number")
		}
	}

	if err := h.settingsSvc.Set(c.Context(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"key": key, "value": req.Value})
}
