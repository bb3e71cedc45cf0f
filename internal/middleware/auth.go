package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
	"github.com/nanonroses/rpa-team-manager-sub000/pkg/auth"
)

// Locals keys set by the auth middleware
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserRole  = "user_role"
	LocalTokenID   = "token_id"
)

// JWTAuth verifies the bearer token and checks that its server-side session
// still exists. Passing both puts the caller's identity in Locals.
func JWTAuth(jwtAuth *auth.JWTAuth, authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ExtractToken(c.Get("Authorization"))
		if err != nil {
			return apperrors.Unauthorized("Missing or malformed authorization header")
		}

		claims, err := jwtAuth.VerifyToken(token)
		if err != nil {
			return apperrors.Unauthorized("Invalid or expired token")
		}

		if err := authSvc.ValidateSession(c.Context(), claims.TokenID); err != nil {
			return err
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserRole, claims.Role)
		c.Locals(LocalTokenID, claims.TokenID)
		return c.Next()
	}
}

// UserID returns the authenticated user's id from Locals
func UserID(c *fiber.Ctx) int {
	id, _ := c.Locals(LocalUserID).(int)
	return id
}

// UserRole returns the authenticated user's role from Locals
func UserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalUserRole).(string)
	return role
}

// TokenID returns the session token id from Locals
func TokenID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalTokenID).(string)
	return id
}
