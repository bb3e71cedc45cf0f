package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/middleware"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

// AuthHandler serves login, logout, refresh and the current-user endpoint
type AuthHandler struct {
	authSvc *services.AuthService
	userSvc *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *services.AuthService, userSvc *services.UserService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.Validation("Email and password are required")
	}

	resp, err := h.authSvc.Login(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authSvc.Logout(c.Context(), middleware.TokenID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	if req.RefreshToken == "" {
		return apperrors.Validation("A refresh token is required")
	}

	resp, err := h.authSvc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.userSvc.GetByID(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	user.PasswordHash = ""
	return c.JSON(user)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	userID := middleware.UserID(c)
	user, err := h.userSvc.GetByID(c.Context(), userID)
	if err != nil {
		return err
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil || !valid {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	if err := h.userSvc.UpdatePassword(c.Context(), userID, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
