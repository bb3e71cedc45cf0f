package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// RequireRoles allows only the listed roles past. Admins always pass.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		role := UserRole(c)
		if role == models.RoleAdmin || allowed[role] {
			return c.Next()
		}
		return apperrors.PermissionDenied("Your role does not permit this operation")
	}
}
