package models

import "time"

// Role constants
const (
	RoleAdmin         = "admin"
	RoleTeamLead      = "team_lead"
	RoleRPADeveloper  = "rpa_developer"
	RoleRPAOperations = "rpa_operations"
	RoleITSupport     = "it_support"
)

// ValidRoles lists every assignable role
var ValidRoles = []string{RoleAdmin, RoleTeamLead, RoleRPADeveloper, RoleRPAOperations, RoleITSupport}

// IsValidRole checks whether role is one of the known roles
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a team member account
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageProjects checks if the user can create or delete projects
func (u *User) CanManageProjects() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeamLead
}

// CanManageFinancials checks if the user can see and edit cost data.
// Cost rates are salary-derived, so access stays narrow.
func (u *User) CanManageFinancials() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeamLead
}

// CanManageMilestones checks if the user can mutate PMO milestones
func (u *User) CanManageMilestones() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeamLead || u.Role == RoleRPAOperations
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest is the request body for updating a user
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the response for successful authentication
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// Session is a server-side session row backing JWT revocation
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
